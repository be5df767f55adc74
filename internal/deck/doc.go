// Package deck assembles extracted slide images into a PowerPoint (.pptx)
// presentation. The OOXML package is written directly so the output opens in
// PowerPoint, Keynote, and LibreOffice without any native dependencies.
package deck
