package deck

import (
	"bytes"
	"fmt"
	"image"
	"log"
	"regexp"
	"strconv"
	"strings"

	// Formats accepted for template image reuse; anything else is skipped
	// per slide without failing the deck.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"deckforge/generator"
)

// Assembler binds outline content onto template structure. Steps inside one
// slide degrade independently: a missing placeholder, a bad image, or an
// unattachable note never aborts the slide or the deck.
type Assembler struct {
	verbose bool
	logger  *log.Logger
}

// NewAssembler creates an assembler. logger may be nil for the default.
func NewAssembler(verbose bool, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{verbose: verbose, logger: logger}
}

func (a *Assembler) infof(format string, args ...interface{}) {
	if !a.verbose {
		return
	}
	a.logger.Printf("[INFO] "+format, args...)
}

// Build appends one slide per outline entry onto the template's own package
// and returns the serialized deck. Masters, layouts, and theme are
// preserved; layouts are referenced, not copied. Fatal only when the
// template has no layouts at all or the final write fails.
func (a *Assembler) Build(outline generator.Outline, tpl *Template) ([]byte, error) {
	if len(tpl.Layouts) == 0 {
		return nil, fmt.Errorf("%w: template has no slide layouts", ErrAssembly)
	}

	b, err := newDeckBuilder(tpl.pkg)
	if err != nil {
		return nil, err
	}

	imgCounter := 0
	for i, spec := range outline {
		layout := tpl.layoutFor(i)
		placed := b.addSlide(a, spec, layout, tpl, imgCounter)
		if placed {
			imgCounter++
		}
	}
	a.infof("assembled %d slides, %d images placed", len(outline), imgCounter)

	if err := b.finish(); err != nil {
		return nil, err
	}
	return tpl.pkg.Bytes()
}

// deckBuilder tracks the package mutations of one assembly run.
type deckBuilder struct {
	pkg         *Package
	presRels    *Relationships
	notesMaster string

	nextSlide    int
	nextNotes    int
	nextSldID    int
	slideEntries []string
}

var (
	slideNumRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	notesNumRe = regexp.MustCompile(`^ppt/notesSlides/notesSlide(\d+)\.xml$`)
	sldIDRe    = regexp.MustCompile(`<(?:[A-Za-z0-9]+:)?sldId\b[^>]*?\bid="(\d+)"`)
)

func newDeckBuilder(pkg *Package) (*deckBuilder, error) {
	presRels, err := pkg.Rels(presentationPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	b := &deckBuilder{
		pkg:       pkg,
		presRels:  presRels,
		nextSlide: 1,
		nextNotes: 1,
		nextSldID: 256,
	}

	if rel, ok := presRels.FirstOfType(relTypeNotesMaster); ok {
		b.notesMaster = resolveTarget(presentationPart, rel.Target)
	}

	for _, name := range pkg.PartNames() {
		if m := slideNumRe.FindStringSubmatch(name); m != nil {
			if n, _ := strconv.Atoi(m[1]); n >= b.nextSlide {
				b.nextSlide = n + 1
			}
		}
		if m := notesNumRe.FindStringSubmatch(name); m != nil {
			if n, _ := strconv.Atoi(m[1]); n >= b.nextNotes {
				b.nextNotes = n + 1
			}
		}
	}

	pres, _ := pkg.Part(presentationPart)
	for _, m := range sldIDRe.FindAllSubmatch(pres, -1) {
		if n, _ := strconv.Atoi(string(m[1])); n >= b.nextSldID {
			b.nextSldID = n + 1
		}
	}
	return b, nil
}

// addSlide runs the per-slide procedure: title, body, image, notes, each
// isolated. Returns whether an image was placed, so the caller advances the
// round-robin counter only on success.
func (b *deckBuilder) addSlide(a *Assembler, spec generator.SlideSpec, layout *Layout, tpl *Template, imgIdx int) bool {
	num := b.nextSlide
	b.nextSlide++
	slidePart := fmt.Sprintf("ppt/slides/slide%d.xml", num)
	slideRels := &Relationships{source: slidePart}
	slideRels.Add(relTypeSlideLayout, relativeTarget(slidePart, layout.PartName))

	shapes := newSlideShapes()

	// Title binding.
	if ph, ok := layout.Find(RoleTitle); ok {
		shapes.addTitle(ph, truncate(spec.Title, generator.MaxTitleLen))
	} else {
		a.infof("slide %d: layout %q has no title placeholder", num, layout.Name)
	}

	// Body binding, degrading to a free text box.
	if ph, ok := layout.Find(RoleBody); ok {
		shapes.addBody(ph, spec.Bullets, tpl.Accent)
	} else {
		a.infof("slide %d: layout %q has no body placeholder, using text box", num, layout.Name)
		shapes.addTextBox(spec.Bullets, tpl.Accent)
	}

	// Image placement: shared asset referenced by relationship, round-robin
	// over the pool. Undecodable bytes skip the image for this slide only.
	placed := false
	if len(tpl.Images) > 0 {
		asset := tpl.Images[imgIdx%len(tpl.Images)]
		if w, err := pictureWidth(asset.Data); err != nil {
			a.infof("slide %d: skipping image %s: %v", num, asset.PartName, err)
		} else {
			relID := slideRels.Add(relTypeImage, relativeTarget(slidePart, asset.PartName))
			var ph *Placeholder
			if p, ok := layout.Find(RolePicture); ok {
				ph = &p
			}
			shapes.addPicture(relID, ph, w)
			placed = true
		}
	}

	// Notes binding requires a notes master in the template.
	if spec.Notes != "" {
		if b.notesMaster == "" {
			a.infof("slide %d: template has no notes master, dropping notes", num)
		} else {
			notesPart := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", b.nextNotes)
			b.nextNotes++
			b.pkg.SetPart(notesPart, marshalNotesSlide(truncate(spec.Notes, generator.MaxNotesLen)))
			b.pkg.types.addOverride(notesPart, notesSlideContentType)

			notesRels := &Relationships{source: notesPart}
			notesRels.Add(relTypeNotesMaster, relativeTarget(notesPart, b.notesMaster))
			notesRels.Add(relTypeSlide, relativeTarget(notesPart, slidePart))
			b.pkg.SetRels(notesRels)

			slideRels.Add(relTypeNotesSlide, relativeTarget(slidePart, notesPart))
		}
	}

	b.pkg.SetPart(slidePart, shapes.marshalSlide())
	b.pkg.SetRels(slideRels)
	b.pkg.types.addOverride(slidePart, slideContentType)

	rID := b.presRels.Add(relTypeSlide, relativeTarget(presentationPart, slidePart))
	b.slideEntries = append(b.slideEntries, fmt.Sprintf(`id="%d" r:id="%s"`, b.nextSldID, rID))
	b.nextSldID++
	return placed
}

// finish writes the presentation rels and splices the new slide ids into
// the presentation's sldIdLst.
func (b *deckBuilder) finish() error {
	b.pkg.SetRels(b.presRels)

	pres, _ := b.pkg.Part(presentationPart)
	updated, err := spliceSlideIDs(pres, b.slideEntries)
	if err != nil {
		return err
	}
	b.pkg.SetPart(presentationPart, updated)
	return nil
}

var (
	presRootRe       = regexp.MustCompile(`<([A-Za-z0-9]+):presentation[\s>]`)
	presRootBareRe   = regexp.MustCompile(`<presentation[\s>]`)
	relsNamespaceRe  = regexp.MustCompile(`xmlns:([A-Za-z0-9]+)="http://schemas\.openxmlformats\.org/officeDocument/2006/relationships"`)
	sldIdLstCloseRe  = regexp.MustCompile(`</(?:[A-Za-z0-9]+:)?sldIdLst>`)
	sldIdLstSelfRe   = regexp.MustCompile(`<((?:[A-Za-z0-9]+:)?sldIdLst)\s*/>`)
	masterLstCloseRe = regexp.MustCompile(`</(?:[A-Za-z0-9]+:)?sldMasterIdLst>`)
	presCloseRe      = regexp.MustCompile(`</(?:[A-Za-z0-9]+:)?presentation>`)
)

// spliceSlideIDs inserts sldId entries into presentation.xml, creating the
// sldIdLst when the template has none. String surgery keeps the rest of the
// part byte-identical.
func spliceSlideIDs(pres []byte, entries []string) ([]byte, error) {
	if len(entries) == 0 {
		return pres, nil
	}

	// Roots in a default namespace carry no prefix; spliced elements must
	// not invent one.
	pPrefix := "p"
	if m := presRootRe.FindSubmatch(pres); m != nil {
		pPrefix = string(m[1])
	} else if presRootBareRe.Match(pres) {
		pPrefix = ""
	}
	rPrefix := "r"
	if m := relsNamespaceRe.FindSubmatch(pres); m != nil {
		rPrefix = string(m[1])
	}
	sldIDName := "sldId"
	lstName := "sldIdLst"
	if pPrefix != "" {
		sldIDName = pPrefix + ":sldId"
		lstName = pPrefix + ":sldIdLst"
	}

	var frag bytes.Buffer
	for _, e := range entries {
		// entries hold `id="N" r:id="rIdM"`; rewrite the r prefix to match
		// the document.
		e = strings.Replace(e, ` r:id=`, ` `+rPrefix+`:id=`, 1)
		fmt.Fprintf(&frag, `<%s %s/>`, sldIDName, e)
	}

	if loc := sldIdLstCloseRe.FindIndex(pres); loc != nil {
		return insertAt(pres, loc[0], frag.Bytes()), nil
	}
	if m := sldIdLstSelfRe.FindSubmatchIndex(pres); m != nil {
		tag := string(pres[m[2]:m[3]])
		repl := []byte("<" + tag + ">" + frag.String() + "</" + tag + ">")
		out := append([]byte{}, pres[:m[0]]...)
		out = append(out, repl...)
		return append(out, pres[m[1]:]...), nil
	}

	list := []byte(fmt.Sprintf(`<%s>%s</%s>`, lstName, frag.String(), lstName))
	if loc := masterLstCloseRe.FindIndex(pres); loc != nil {
		return insertAt(pres, loc[1], list), nil
	}
	if loc := presCloseRe.FindIndex(pres); loc != nil {
		return insertAt(pres, loc[0], list), nil
	}
	return nil, fmt.Errorf("%w: presentation part has no recognizable root", ErrAssembly)
}

func insertAt(data []byte, pos int, ins []byte) []byte {
	out := make([]byte, 0, len(data)+len(ins))
	out = append(out, data[:pos]...)
	out = append(out, ins...)
	return append(out, data[pos:]...)
}

// pictureWidth derives the anchored picture width in EMUs from the image's
// native aspect ratio at the fixed height.
func pictureWidth(data []byte) (int64, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, fmt.Errorf("image has degenerate dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return int64(pictureH) * int64(cfg.Width) / int64(cfg.Height), nil
}

// truncate limits s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
