// Command slidecast converts lecture and talk videos into PowerPoint slide
// decks. Jobs are queued in SQLite and processed through download, frame
// extraction, and deck assembly stages.
package main
