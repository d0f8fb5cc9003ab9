package anki

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "codeberg.org/snonux/kikitori/internal/errors"
	"codeberg.org/snonux/kikitori/internal/testutil"
)

var soundTag = regexp.MustCompile(`^\[sound:([^\]]+)\]$`)

// readDeck extracts the package and returns its media mapping and the
// fields of every note in insertion order.
func readDeck(t *testing.T, path string) (map[string]string, [][]string) {
	t.Helper()

	entries := testutil.ZipEntries(t, path)
	require.Contains(t, entries, "collection.anki2")
	require.Contains(t, entries, "media")

	var media map[string]string
	require.NoError(t, json.Unmarshal(entries["media"], &media))
	for num := range media {
		require.Contains(t, entries, num, "media file %s missing from package", num)
	}

	dbPath := filepath.Join(t.TempDir(), "collection.anki2")
	require.NoError(t, os.WriteFile(dbPath, entries["collection.anki2"], 0o644))
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query("SELECT flds FROM notes ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	var notes [][]string
	for rows.Next() {
		var flds string
		require.NoError(t, rows.Scan(&flds))
		notes = append(notes, strings.Split(flds, fieldSep))
	}
	require.NoError(t, rows.Err())
	return media, notes
}

func newTestAssembler(t *testing.T, synth Synthesizer) (*Assembler, string) {
	t.Helper()
	dir := t.TempDir()
	a, err := NewAssembler(synth, Config{
		OutputPath: filepath.Join(dir, "japanese_vocabulary.apkg"),
		ClipDir:    filepath.Join(dir, "clips"),
		Workers:    3,
	}, nil)
	require.NoError(t, err)
	return a, dir
}

var sampleEntries = []Entry{
	{Word: "猫", Reading: "ネコ", Translation: "cat", Context: "猫が好きです"},
	{Word: "好き", Reading: "スキ", Translation: "liked", Context: "猫が好きです"},
	{Word: "食べる", Reading: "タベル", Translation: "", Context: ""},
	{Word: "犬", Reading: "イヌ", Translation: "dog"},
}

func TestAssemble_ReferentialIntegrity(t *testing.T) {
	synth := &testutil.MockSynthesizer{FailTexts: map[string]bool{"食べる": true}}
	a, _ := newTestAssembler(t, synth)

	res, err := a.Assemble(context.Background(), sampleEntries)
	require.NoError(t, err)
	assert.Equal(t, len(sampleEntries)-1, res.Media)

	media, notes := readDeck(t, res.Path)
	require.Len(t, notes, len(sampleEntries))
	assert.Len(t, media, len(sampleEntries)-1)

	bundled := make(map[string]bool)
	for _, name := range media {
		bundled[name] = true
	}

	for i, fields := range notes {
		require.Len(t, fields, len(fieldNames))
		assert.Equal(t, sampleEntries[i].Word, fields[0])
		assert.Equal(t, sampleEntries[i].Translation, fields[2])

		audio := fields[4]
		if sampleEntries[i].Word == "食べる" {
			assert.Empty(t, audio, "failed synthesis must leave an empty audio field")
			continue
		}
		m := soundTag.FindStringSubmatch(audio)
		require.NotNil(t, m, "note %d audio field %q", i, audio)
		assert.True(t, bundled[m[1]], "audio tag %q does not resolve to a bundled file", m[1])
	}
}

func TestAssemble_ClipNames(t *testing.T) {
	a, dir := newTestAssembler(t, &testutil.MockSynthesizer{})
	res, err := a.Assemble(context.Background(), []Entry{{Word: "「本」"}, {Word: "本"}})
	require.NoError(t, err)

	first := filepath.Base(res.Notes[0].AudioFile)
	second := filepath.Base(res.Notes[1].AudioFile)
	assert.Regexp(t, `^clip_[0-9a-f]{8}_0_本\.mp3$`, first)
	assert.Regexp(t, `^clip_[0-9a-f]{8}_1_本\.mp3$`, second)
	assert.NotEqual(t, first, second)

	media, _ := readDeck(t, res.Path)
	var bundled []string
	for _, name := range media {
		bundled = append(bundled, name)
	}
	assert.ElementsMatch(t, []string{first, second}, bundled)
	assert.Empty(t, testutil.ListDir(t, filepath.Join(dir, "clips"), "*.mp3"))
}

func TestAssemble_IDsStablePerInstance(t *testing.T) {
	a, _ := newTestAssembler(t, &testutil.MockSynthesizer{})
	deckID, modelID := a.deckID, a.modelID

	for _, id := range []int64{deckID, modelID} {
		assert.GreaterOrEqual(t, id, minID)
		assert.Less(t, id, maxID)
	}

	_, err := a.Assemble(context.Background(), sampleEntries[:1])
	require.NoError(t, err)
	_, err = a.Assemble(context.Background(), sampleEntries[1:2])
	require.NoError(t, err)
	assert.Equal(t, deckID, a.deckID)
	assert.Equal(t, modelID, a.modelID)

	b, _ := newTestAssembler(t, nil)
	assert.False(t, a.deckID == b.deckID && a.modelID == b.modelID,
		"two instances drew identical ids")
}

func TestAssemble_RemovesBundledClips(t *testing.T) {
	a, dir := newTestAssembler(t, &testutil.MockSynthesizer{})
	clipDir := filepath.Join(dir, "clips")

	// A clip from another instance in the shared directory is left alone.
	foreign := filepath.Join(clipDir, "clip_deadbeef_0_猫.mp3")
	testutil.CreateTestFile(t, foreign, []byte("x"))

	first, err := a.Assemble(context.Background(), sampleEntries[:2])
	require.NoError(t, err)
	for _, n := range first.Notes {
		require.NotEmpty(t, n.AudioFile)
		testutil.AssertFileNotExists(t, n.AudioFile)
	}
	media, _ := readDeck(t, first.Path)
	assert.Len(t, media, 2, "deck keeps its own copies of the clips")

	second, err := a.Assemble(context.Background(), sampleEntries[2:])
	require.NoError(t, err)
	for _, n := range second.Notes {
		testutil.AssertFileNotExists(t, n.AudioFile)
	}

	require.NoError(t, a.Close())
	assert.Equal(t, []string{filepath.Base(foreign)}, testutil.ListDir(t, clipDir, "*.mp3"))
	testutil.AssertFileExists(t, second.Path)
}

func TestAssemble_RemovesClipsWhenWriteFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	testutil.CreateTestFile(t, blocker, []byte("not a directory"))

	synth := &testutil.MockSynthesizer{}
	a, err := NewAssembler(synth, Config{
		OutputPath: filepath.Join(blocker, "deck.apkg"),
		ClipDir:    filepath.Join(dir, "clips"),
	}, nil)
	require.NoError(t, err)

	_, err = a.Assemble(context.Background(), sampleEntries[:2])
	require.Error(t, err)
	assert.Len(t, synth.Texts(), 2)
	assert.Empty(t, testutil.ListDir(t, filepath.Join(dir, "clips"), "*.mp3"))
}

func TestAssemble_OverwritesOutput(t *testing.T) {
	var archived []string
	dir := t.TempDir()
	a, err := NewAssembler(&testutil.MockSynthesizer{}, Config{
		OutputPath: filepath.Join(dir, "deck.apkg"),
		Archive: func(existing string) error {
			archived = append(archived, existing)
			return nil
		},
	}, nil)
	require.NoError(t, err)

	_, err = a.Assemble(context.Background(), sampleEntries[:1])
	require.NoError(t, err)
	_, err = a.Assemble(context.Background(), sampleEntries)
	require.NoError(t, err)

	_, notes := readDeck(t, filepath.Join(dir, "deck.apkg"))
	assert.Len(t, notes, len(sampleEntries))
	assert.Len(t, archived, 1)
	assert.Empty(t, testutil.ListDir(t, dir, ".kikitori-*"), "temp package left behind")
}

func TestAssemble_EmptyEntries(t *testing.T) {
	a, _ := newTestAssembler(t, &testutil.MockSynthesizer{})
	res, err := a.Assemble(context.Background(), nil)
	require.NoError(t, err)

	media, notes := readDeck(t, res.Path)
	assert.Empty(t, media)
	assert.Empty(t, notes)
}

func TestAssemble_UnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	testutil.CreateTestFile(t, blocker, []byte("x"))

	a, err := NewAssembler(nil, Config{
		OutputPath: filepath.Join(blocker, "deck.apkg"),
		ClipDir:    filepath.Join(dir, "clips"),
	}, nil)
	require.NoError(t, err)

	_, err = a.Assemble(context.Background(), sampleEntries)
	require.Error(t, err)
	assert.True(t, kerrors.Is(err, kerrors.ErrAssembly))
}

func TestAssemble_NoSynthesizer(t *testing.T) {
	a, _ := newTestAssembler(t, nil)
	res, err := a.Assemble(context.Background(), sampleEntries)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Media)
	for _, n := range res.Notes {
		assert.Empty(t, n.AudioTag())
	}
}

func TestNewAssembler_RequiresOutput(t *testing.T) {
	_, err := NewAssembler(nil, Config{}, nil)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.csv")
	notes := []Note{
		{Entry: Entry{Word: "猫", Reading: "ネコ", Translation: "cat", Context: "猫が好き, です"}, AudioFile: "/x/clip_a_0_猫.mp3"},
		{Entry: Entry{Word: "犬"}},
	}
	require.NoError(t, WriteCSV(notes, path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Word,Reading,Translation,Context,Audio", lines[0])
	assert.Equal(t, `猫,ネコ,cat,"猫が好き, です",[sound:clip_a_0_猫.mp3]`, lines[1])
	assert.Equal(t, "犬,,,,", lines[2])
}

func TestWriteCSV_CreateError(t *testing.T) {
	dir := t.TempDir()
	err := WriteCSV(nil, filepath.Join(dir, "missing", "deck.csv"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create CSV file")

	// a second export over an existing file replaces it cleanly
	path := filepath.Join(dir, "deck.csv")
	require.NoError(t, WriteCSV([]Note{{Entry: Entry{Word: "猫"}}}, path, false))
	require.NoError(t, WriteCSV([]Note{{Entry: Entry{Word: "犬"}}}, path, false))
	testutil.AssertFileContains(t, path, "犬")
}

func TestFieldChecksum(t *testing.T) {
	assert.NotZero(t, fieldChecksum("猫"))
	assert.Equal(t, fieldChecksum("猫"), fieldChecksum("猫"))
	assert.NotEqual(t, fieldChecksum("猫"), fieldChecksum("犬"))
}
