package preset

import (
	"errors"
	"testing"

	"github.com/trackforge/trackforge/pkg/track"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() err = %v; want nil", err)
	}
	return s
}

func TestBuiltinSeeded(t *testing.T) {
	s := newTestStore(t)
	names, err := s.List()
	if err != nil {
		t.Fatalf("List() err = %v; want nil", err)
	}
	if got, want := len(names), len(Builtin()); got != want {
		t.Fatalf("List() = %d presets; want %d", got, want)
	}
	for _, b := range Builtin() {
		p, err := s.Load(b.Name)
		if err != nil {
			t.Fatalf("Load(%q) err = %v; want nil", b.Name, err)
		}
		if p.Genre != b.Genre {
			t.Fatalf("Load(%q) genre = %q; want %q", b.Name, p.Genre, b.Genre)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	want := &track.PresetConfig{
		Name:        "midnight_drive",
		Description: "Synthwave for empty highways",
		Genre:       "synthwave",
		Structure: track.SongStructure{
			Intro:       true,
			VerseCount:  2,
			ChorusCount: 3,
			Bridge:      false,
			Outro:       true,
		},
		StyleReferences: []track.StyleReference{
			{Kind: track.KindStyle, Value: "retrowave"},
			{Kind: track.KindSound, Value: "analog synths with gated reverb drums"},
		},
		Temperature: 0.8,
		Tips:        "Lean into nostalgia.",
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save() err = %v; want nil", err)
	}
	got, err := s.Load("midnight_drive")
	if err != nil {
		t.Fatalf("Load() err = %v; want nil", err)
	}
	if got.Name != want.Name || got.Description != want.Description ||
		got.Genre != want.Genre || got.Temperature != want.Temperature ||
		got.Tips != want.Tips || got.Structure != want.Structure {
		t.Fatalf("Load() = %+v; want %+v", got, want)
	}
	if len(got.StyleReferences) != len(want.StyleReferences) {
		t.Fatalf("Load() style references = %d; want %d", len(got.StyleReferences), len(want.StyleReferences))
	}
	for i, ref := range got.StyleReferences {
		if ref != want.StyleReferences[i] {
			t.Fatalf("Load() style reference %d = %v; want %v", i, ref, want.StyleReferences[i])
		}
	}
}

func TestSaveInvalid(t *testing.T) {
	s := newTestStore(t)
	p := &track.PresetConfig{
		Name:        "broken",
		Genre:       "rock",
		Structure:   track.SongStructure{VerseCount: 0, ChorusCount: 2},
		Temperature: 0.7,
	}
	if err := s.Save(p); err == nil {
		t.Fatal("Save() err = nil; want error")
	}
}

func TestSaveRejectsPathNames(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"../escape", "foo/bar", `foo\bar`} {
		p := &track.PresetConfig{
			Name:        name,
			Genre:       "rock",
			Structure:   track.DefaultStructure(),
			Temperature: 0.7,
		}
		if err := s.Save(p); err == nil {
			t.Fatalf("Save(%q) err = nil; want error", name)
		}
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("rock_anthem"); err != nil {
		t.Fatalf("Delete() err = %v; want nil", err)
	}
	names, err := s.List()
	if err != nil {
		t.Fatalf("List() err = %v; want nil", err)
	}
	for _, name := range names {
		if name == "rock_anthem" {
			t.Fatal("List() still contains deleted preset")
		}
	}
	if _, err := s.Load("rock_anthem"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() err = %v; want ErrNotFound", err)
	}
	if err := s.Delete("rock_anthem"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete() err = %v; want ErrNotFound", err)
	}
}

func TestLoadUnknown(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() err = %v; want ErrNotFound", err)
	}
}

func TestListMetadataCache(t *testing.T) {
	s := newTestStore(t)
	mds, err := s.ListMetadata()
	if err != nil {
		t.Fatalf("ListMetadata() err = %v; want nil", err)
	}
	if len(mds) != len(Builtin()) {
		t.Fatalf("ListMetadata() = %d entries; want %d", len(mds), len(Builtin()))
	}

	// An update must invalidate the cached metadata.
	p, err := s.Load("rock_anthem")
	if err != nil {
		t.Fatalf("Load() err = %v; want nil", err)
	}
	p.Description = "updated description"
	if err := s.Save(p); err != nil {
		t.Fatalf("Save() err = %v; want nil", err)
	}
	mds, err = s.ListMetadata()
	if err != nil {
		t.Fatalf("ListMetadata() err = %v; want nil", err)
	}
	var found bool
	for _, md := range mds {
		if md.Name == "rock_anthem" {
			found = true
			if md.Description != "updated description" {
				t.Fatalf("ListMetadata() description = %q; want %q", md.Description, "updated description")
			}
		}
	}
	if !found {
		t.Fatal("ListMetadata() missing rock_anthem")
	}
}

func TestMetadataSorted(t *testing.T) {
	s := newTestStore(t)
	names, err := s.List()
	if err != nil {
		t.Fatalf("List() err = %v; want nil", err)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("List() not sorted: %q >= %q", names[i-1], names[i])
		}
	}
}
