package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// fieldSep separates note fields in the notes.flds column.
const fieldSep = "\x1f"

// deckPackage is everything written into one .apkg.
type deckPackage struct {
	deckName string
	deckID   int64
	modelID  int64
	notes    []Note
}

// writeAPKG builds the package in a scratch directory and zips it to
// outputPath. Media files are numbered "0", "1", ... in note order and the
// "media" file maps those numbers back to the names used in [sound:...].
func writeAPKG(pkg deckPackage, outputPath string) (int, error) {
	tempDir, err := os.MkdirTemp("", "kikitori_apkg_*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	media, err := copyMedia(pkg.notes, tempDir)
	if err != nil {
		return 0, fmt.Errorf("failed to copy media files: %w", err)
	}

	mapping := make(map[string]string, len(media))
	for i, name := range media {
		mapping[fmt.Sprint(i)] = name
	}
	data, err := json.Marshal(mapping)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(tempDir, "media"), data, 0644); err != nil {
		return 0, fmt.Errorf("failed to create media mapping: %w", err)
	}

	if err := createDatabase(pkg, filepath.Join(tempDir, "collection.anki2")); err != nil {
		return 0, fmt.Errorf("failed to create database: %w", err)
	}

	if err := zipDir(tempDir, outputPath); err != nil {
		return 0, fmt.Errorf("failed to create zip package: %w", err)
	}
	return len(media), nil
}

// copyMedia copies every referenced clip into dir and returns the media
// names in numbering order.
func copyMedia(notes []Note, dir string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	for _, n := range notes {
		name := n.AudioName()
		if name == "" || seen[name] {
			continue
		}
		if err := copyFile(n.AudioFile, filepath.Join(dir, fmt.Sprint(len(names)))); err != nil {
			return nil, fmt.Errorf("%s: %w", n.AudioFile, err)
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

func createDatabase(pkg deckPackage, dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, query := range schema {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	if err := insertCollection(db, pkg); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	if err := insertNotes(db, pkg); err != nil {
		return fmt.Errorf("failed to insert notes and cards: %w", err)
	}
	return nil
}

var schema = []string{
	`CREATE TABLE col (
		id integer PRIMARY KEY,
		crt integer NOT NULL,
		mod integer NOT NULL,
		scm integer NOT NULL,
		ver integer NOT NULL,
		dty integer NOT NULL,
		usn integer NOT NULL,
		ls integer NOT NULL,
		conf text NOT NULL,
		models text NOT NULL,
		decks text NOT NULL,
		dconf text NOT NULL,
		tags text NOT NULL
	)`,
	`CREATE TABLE notes (
		id integer PRIMARY KEY,
		guid text NOT NULL,
		mid integer NOT NULL,
		mod integer NOT NULL,
		usn integer NOT NULL,
		tags text NOT NULL,
		flds text NOT NULL,
		sfld text NOT NULL,
		csum integer NOT NULL,
		flags integer NOT NULL,
		data text NOT NULL
	)`,
	`CREATE TABLE cards (
		id integer PRIMARY KEY,
		nid integer NOT NULL,
		did integer NOT NULL,
		ord integer NOT NULL,
		mod integer NOT NULL,
		usn integer NOT NULL,
		type integer NOT NULL,
		queue integer NOT NULL,
		due integer NOT NULL,
		ivl integer NOT NULL,
		factor integer NOT NULL,
		reps integer NOT NULL,
		lapses integer NOT NULL,
		left integer NOT NULL,
		odue integer NOT NULL,
		odid integer NOT NULL,
		flags integer NOT NULL,
		data text NOT NULL
	)`,
	`CREATE TABLE revlog (
		id integer PRIMARY KEY,
		cid integer NOT NULL,
		usn integer NOT NULL,
		ease integer NOT NULL,
		ivl integer NOT NULL,
		lastIvl integer NOT NULL,
		factor integer NOT NULL,
		time integer NOT NULL,
		type integer NOT NULL
	)`,
	`CREATE TABLE graves (
		usn integer NOT NULL,
		oid integer NOT NULL,
		type integer NOT NULL
	)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
	`CREATE INDEX ix_notes_usn ON notes (usn)`,
	`CREATE INDEX ix_cards_usn ON cards (usn)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
}

func deckJSON(id int64, name, desc string, now int64) map[string]interface{} {
	return map[string]interface{}{
		"id":               id,
		"name":             name,
		"mod":              now,
		"desc":             desc,
		"collapsed":        false,
		"dyn":              0,
		"conf":             1,
		"usn":              0,
		"newToday":         []int{0, 0},
		"revToday":         []int{0, 0},
		"lrnToday":         []int{0, 0},
		"timeToday":        []int{0, 0},
		"browserCollapsed": false,
		"extendNew":        10,
		"extendRev":        50,
	}
}

func insertCollection(db *sql.DB, pkg deckPackage) error {
	now := time.Now().Unix()

	decks, err := json.Marshal(map[string]interface{}{
		"1":                    deckJSON(1, "Default", "", now),
		fmt.Sprint(pkg.deckID): deckJSON(pkg.deckID, pkg.deckName, "Japanese vocabulary generated by kikitori", now),
	})
	if err != nil {
		return err
	}
	models, err := json.Marshal(map[string]interface{}{
		fmt.Sprint(pkg.modelID): noteType(pkg, now),
	})
	if err != nil {
		return err
	}
	conf, err := json.Marshal(map[string]interface{}{
		"nextPos":       1,
		"estTimes":      true,
		"activeDecks":   []int64{1},
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
		"curDeck":       1,
		"newSpread":     0,
		"dueCounts":     true,
		"collapseTime":  1200,
		"timeLim":       0,
		"schedVer":      1,
		"curModel":      fmt.Sprint(pkg.modelID),
		"dayLearnFirst": false,
	})
	if err != nil {
		return err
	}
	dconf, err := json.Marshal(map[string]interface{}{
		"1": map[string]interface{}{
			"id":   1,
			"name": "Default",
			"dyn":  0,
			"new": map[string]interface{}{
				"delays":        []int{1, 10},
				"ints":          []int{1, 4, 7},
				"initialFactor": 2500,
				"perDay":        20,
				"order":         1,
				"bury":          true,
				"separate":      true,
			},
			"lapse": map[string]interface{}{
				"delays":      []int{10},
				"mult":        0,
				"minInt":      1,
				"leechFails":  8,
				"leechAction": 0,
			},
			"rev": map[string]interface{}{
				"perDay":   100,
				"ease4":    1.3,
				"fuzz":     0.05,
				"maxIvl":   36500,
				"ivlFct":   1,
				"bury":     true,
				"minSpace": 1,
			},
			"timer":    0,
			"maxTaken": 60,
			"usn":      0,
			"mod":      now,
			"autoplay": true,
			"replayq":  true,
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1,        // id
		now,      // crt
		now*1000, // mod
		now*1000, // scm
		11,       // ver (schema version)
		0,        // dty
		0,        // usn
		0,        // ls
		string(conf),
		string(models),
		string(decks),
		string(dconf),
		"{}", // tags
	)
	return err
}

// Field order of the note type. insertNotes writes values in this order.
var fieldNames = []string{"Word", "Reading", "Translation", "Context", "Audio"}

func noteType(pkg deckPackage, now int64) map[string]interface{} {
	flds := make([]map[string]interface{}, 0, len(fieldNames))
	for i, name := range fieldNames {
		flds = append(flds, map[string]interface{}{
			"name":   name,
			"ord":    i,
			"sticky": false,
			"rtl":    false,
			"font":   "Noto Sans JP",
			"size":   20,
			"media":  []string{},
		})
	}

	return map[string]interface{}{
		"id":        pkg.modelID,
		"name":      "Japanese Vocabulary (kikitori)",
		"type":      0,
		"mod":       now,
		"usn":       -1,
		"sortf":     0,
		"did":       pkg.deckID,
		"req":       [][]interface{}{{0, "all", []int{0}}},
		"vers":      []int{},
		"tags":      []string{},
		"latexPre":  "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}",
		"latexPost": `\end{document}`,
		"flds":      flds,
		"tmpls": []map[string]interface{}{
			{
				"name":  "Card 1",
				"ord":   0,
				"qfmt":  frontTemplate,
				"afmt":  backTemplate,
				"did":   nil,
				"bqfmt": "",
				"bafmt": "",
			},
		},
		"css": cardCSS,
	}
}

const frontTemplate = `<div class="word">{{Word}}</div>`

const backTemplate = `{{FrontSide}}

<hr id="answer">

{{#Reading}}<div class="reading">{{Reading}}</div>{{/Reading}}
<div class="translation">{{Translation}}</div>
{{#Context}}<div class="context">{{Context}}</div>{{/Context}}
{{Audio}}`

const cardCSS = `.card {
  font-family: "Noto Sans JP", "Hiragino Sans", sans-serif;
  font-size: 20px;
  text-align: center;
  color: #333;
  background-color: white;
}

.word {
  font-size: 40px;
  font-weight: bold;
  margin: 20px 0;
}

.reading {
  font-size: 22px;
  color: #7f8c8d;
}

.translation {
  font-size: 28px;
  color: #2c3e50;
  margin: 20px 0;
}

.context {
  font-size: 18px;
  color: #7f8c8d;
  font-style: italic;
}

hr#answer {
  margin: 30px 0;
  border: 0;
  border-top: 1px solid #ecf0f1;
}`

func insertNotes(db *sql.DB, pkg deckPackage) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	base := now.UnixMilli()
	for i, n := range pkg.notes {
		noteID := base + int64(i*2)
		cardID := noteID + 1

		fields := strings.Join([]string{
			n.Word,
			n.Reading,
			n.Translation,
			n.Context,
			n.AudioTag(),
		}, fieldSep)

		_, err := tx.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			noteID,                // id
			uuid.NewString(),      // guid
			pkg.modelID,           // mid
			now.Unix(),            // mod
			-1,                    // usn
			"",                    // tags
			fields,                // flds
			n.Word,                // sfld (sort field)
			fieldChecksum(n.Word), // csum
			0,                     // flags
			"",                    // data
		)
		if err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}

		_, err = tx.Exec(`INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cardID,     // id
			noteID,     // nid
			pkg.deckID, // did
			0,          // ord
			now.Unix(), // mod
			-1,         // usn
			0,          // type (0=new)
			0,          // queue (0=new)
			i+1,        // due (position for new cards)
			0,          // ivl
			0,          // factor
			0,          // reps
			0,          // lapses
			0,          // left
			0,          // odue
			0,          // odid
			0,          // flags
			"",         // data
		)
		if err != nil {
			return fmt.Errorf("failed to insert card: %w", err)
		}
	}
	return tx.Commit()
}

// fieldChecksum is Anki's duplicate-detection checksum: the first 32 bits
// of the SHA-1 of the sort field.
func fieldChecksum(s string) int64 {
	sum := sha1.Sum([]byte(s))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

func zipDir(dir, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	archive := zip.NewWriter(zipFile)

	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			if err = addZipEntry(archive, filepath.Join(dir, e.Name()), e.Name()); err != nil {
				break
			}
		}
	}
	if cerr := archive.Close(); err == nil {
		err = cerr
	}
	if cerr := zipFile.Close(); err == nil {
		err = cerr
	}
	return err
}

func addZipEntry(archive *zip.Writer, path, name string) error {
	w, err := archive.Create(name)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
