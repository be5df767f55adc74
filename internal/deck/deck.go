package deck

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"slidecast/internal/logging"
	"slidecast/internal/services"
)

// Slide canvas is a 16:9 layout of 10 by 5.625 inches with a 0.3 inch margin
// reserved for letterboxed placement.
const (
	CanvasWidth  = int64(10 * emuPerInch)
	CanvasHeight = int64(5.625 * emuPerInch)
	Margin       = int64(0.3 * emuPerInch)
)

// Options control the assembled presentation.
type Options struct {
	// Title, when set, prepends a title slide.
	Title    string
	Subtitle string
	// Fill scales images to cover the full canvas, cropping overflow at the
	// slide edges. When false images are letterboxed inside the margins.
	Fill bool
}

// Result summarizes a built deck.
type Result struct {
	Path       string
	SlideCount int
}

// Builder assembles slide images into a PowerPoint file.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder constructs a deck builder.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{logger: logging.NewComponentLogger(logger, "deck")}
}

// Build writes a .pptx file containing one slide per image, in the order
// given. An empty image list is an error: a deck with no content would hide
// an upstream extraction failure.
func (b *Builder) Build(imagePaths []string, outPath string, opts Options) (Result, error) {
	if len(imagePaths) == 0 {
		return Result{}, services.Wrap(services.ErrEmptyDeck, "assemble", "build deck",
			"no slide images to assemble", nil)
	}
	if strings.TrimSpace(outPath) == "" {
		return Result{}, errors.New("output path required")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return Result{}, fmt.Errorf("create deck directory: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return Result{}, fmt.Errorf("create deck file: %w", err)
	}
	defer out.Close()

	archive := zip.NewWriter(out)
	slideCount := len(imagePaths)
	hasTitle := strings.TrimSpace(opts.Title) != ""
	if hasTitle {
		slideCount++
	}

	extensions := imageExtensions(imagePaths)
	if err := writePart(archive, "[Content_Types].xml", contentTypesXML(slideCount, extensions)); err != nil {
		return Result{}, err
	}
	if err := writePart(archive, "_rels/.rels", relsRoot); err != nil {
		return Result{}, err
	}
	if err := writePart(archive, "ppt/presentation.xml", presentationXML(slideCount, CanvasWidth, CanvasHeight)); err != nil {
		return Result{}, err
	}
	if err := writePart(archive, "ppt/_rels/presentation.xml.rels", presentationRels(slideCount)); err != nil {
		return Result{}, err
	}
	if err := writePart(archive, "ppt/slideMasters/slideMaster1.xml", slideMasterXML); err != nil {
		return Result{}, err
	}
	if err := writePart(archive, "ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels); err != nil {
		return Result{}, err
	}
	if err := writePart(archive, "ppt/slideLayouts/slideLayout1.xml", slideLayoutXML); err != nil {
		return Result{}, err
	}
	if err := writePart(archive, "ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRels); err != nil {
		return Result{}, err
	}
	if err := writePart(archive, "ppt/theme/theme1.xml", themeXML); err != nil {
		return Result{}, err
	}

	slideIndex := 1
	if hasTitle {
		name := fmt.Sprintf("ppt/slides/slide%d.xml", slideIndex)
		if err := writePart(archive, name, titleSlideXML(opts.Title, opts.Subtitle, CanvasWidth, CanvasHeight)); err != nil {
			return Result{}, err
		}
		relsName := fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", slideIndex)
		if err := writePart(archive, relsName, slideRels("")); err != nil {
			return Result{}, err
		}
		slideIndex++
	}

	for i, imagePath := range imagePaths {
		payload, err := os.ReadFile(imagePath)
		if err != nil {
			return Result{}, fmt.Errorf("read slide image: %w", err)
		}
		config, _, err := image.DecodeConfig(bytes.NewReader(payload))
		if err != nil {
			return Result{}, fmt.Errorf("decode slide image %s: %w", filepath.Base(imagePath), err)
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(imagePath)), ".")
		mediaName := fmt.Sprintf("image%d.%s", i+1, ext)
		mediaWriter, err := archive.Create("ppt/media/" + mediaName)
		if err != nil {
			return Result{}, fmt.Errorf("add media part: %w", err)
		}
		if _, err := mediaWriter.Write(payload); err != nil {
			return Result{}, fmt.Errorf("write media part: %w", err)
		}

		x, y, w, h := placeImage(config.Width, config.Height, opts.Fill)
		name := fmt.Sprintf("ppt/slides/slide%d.xml", slideIndex)
		if err := writePart(archive, name, imageSlideXML("rId2", filepath.Base(imagePath), x, y, w, h)); err != nil {
			return Result{}, err
		}
		relsName := fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", slideIndex)
		if err := writePart(archive, relsName, slideRels("../media/"+mediaName)); err != nil {
			return Result{}, err
		}
		slideIndex++
	}

	if err := archive.Close(); err != nil {
		return Result{}, fmt.Errorf("finalize deck archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return Result{}, fmt.Errorf("close deck file: %w", err)
	}

	b.logger.Info("deck assembled",
		logging.String("path", outPath),
		logging.Int("slides", slideCount),
	)
	return Result{Path: outPath, SlideCount: slideCount}, nil
}

// placeImage computes the picture bounds in EMU. Fill covers the whole canvas
// and lets the slide edges crop the overflow; fit letterboxes inside the
// margins. Both modes preserve aspect ratio and center the image.
func placeImage(imgWidth, imgHeight int, fill bool) (x, y, w, h int64) {
	if imgWidth <= 0 || imgHeight <= 0 {
		return 0, 0, CanvasWidth, CanvasHeight
	}

	iw, ih := float64(imgWidth), float64(imgHeight)
	if fill {
		scale := float64(CanvasWidth) / iw
		if alt := float64(CanvasHeight) / ih; alt > scale {
			scale = alt
		}
		w = int64(iw * scale)
		h = int64(ih * scale)
		return (CanvasWidth - w) / 2, (CanvasHeight - h) / 2, w, h
	}

	availW := CanvasWidth - 2*Margin
	availH := CanvasHeight - 2*Margin
	scale := float64(availW) / iw
	if alt := float64(availH) / ih; alt < scale {
		scale = alt
	}
	w = int64(iw * scale)
	h = int64(ih * scale)
	return (CanvasWidth - w) / 2, (CanvasHeight - h) / 2, w, h
}

func imageExtensions(paths []string) []string {
	unique := make(map[string]struct{})
	for _, path := range paths {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if ext != "" {
			unique[ext] = struct{}{}
		}
	}
	extensions := make([]string, 0, len(unique))
	for ext := range unique {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}

func writePart(archive *zip.Writer, name, content string) error {
	writer, err := archive.Create(name)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := writer.Write([]byte(content)); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
