package queue

import "path/filepath"

// Per-job directory layout. Names are derived from the job id alone so a data
// root can be copied between machines without path rewriting.
const (
	DownloadDirName = "download"
	SlidesDirName   = "slides"
	ImagesDirName   = "images"
	DeckDirName     = "ppt"
	SlidesBaseName  = "slides.json"
)

// JobDir returns the working directory for a job beneath the jobs root.
func JobDir(jobsRoot, jobID string) string {
	return filepath.Join(jobsRoot, jobID)
}

// DownloadDir returns the directory the downloader writes media into.
func DownloadDir(jobDir string) string {
	return filepath.Join(jobDir, DownloadDirName)
}

// ImagesDir returns the directory retained frames are written into.
func ImagesDir(jobDir string) string {
	return filepath.Join(jobDir, SlidesDirName, ImagesDirName)
}

// SlidesManifestPath returns the location of the slides.json manifest.
func SlidesManifestPath(jobDir string) string {
	return filepath.Join(jobDir, SlidesDirName, SlidesBaseName)
}

// DeckDir returns the directory the presentation artifact is written into.
func DeckDir(jobDir string) string {
	return filepath.Join(jobDir, DeckDirName)
}
