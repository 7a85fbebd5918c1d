package pipeline

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// fakeStore is an in-memory AssetStore keyed by OS paths.
type fakeStore struct {
	files   map[string]bool
	copies  map[string]string
	copyErr error
}

func newFakeStore(paths ...string) *fakeStore {
	s := &fakeStore{files: map[string]bool{}, copies: map[string]string{}}
	for _, p := range paths {
		s.files[filepath.FromSlash(p)] = true
	}
	return s
}

func (s *fakeStore) Exists(path string) bool { return s.files[path] }

func (s *fakeStore) List(dir string) ([]string, error) {
	var names []string
	for p := range s.files {
		if filepath.Dir(p) == dir {
			names = append(names, filepath.Base(p))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (s *fakeStore) Copy(src, dst string) error {
	if s.copyErr != nil {
		return s.copyErr
	}
	s.copies[src] = dst
	s.files[dst] = true
	return nil
}

func testResolver(store *fakeStore) *ImageResolver {
	return &ImageResolver{
		Store:     store,
		OutputDir: filepath.FromSlash("/out"),
		SourceDir: filepath.FromSlash("/src"),
	}
}

func TestImageResolver_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files []string
		ref   string
		lang  string
		want  string
	}{
		{
			name:  "language directory first",
			files: []string{"/out/en/resources/pinout.png", "/out/resources/pinout.png"},
			ref:   "resources/pinout.png",
			lang:  "en",
			want:  "en/resources/pinout.png",
		},
		{
			name:  "output resources exact",
			files: []string{"/out/resources/pinout.png"},
			ref:   "images/pinout.png",
			lang:  "en",
			want:  "resources/pinout.png",
		},
		{
			name:  "output resources partial by stem",
			files: []string{"/out/resources/pinout.png"},
			ref:   "resources/board_pinout.png",
			lang:  "en",
			want:  "resources/pinout.png",
		},
		{
			name:  "output resources partial by containment",
			files: []string{"/out/resources/esp32_PINOUT.png"},
			ref:   "pinout.png",
			want:  "resources/esp32_PINOUT.png",
		},
		{
			name:  "partial match visits candidates in sorted order",
			files: []string{"/out/resources/b_pinout.png", "/out/resources/a_pinout.png"},
			ref:   "pinout.png",
			want:  "resources/a_pinout.png",
		},
		{
			name:  "output root with cleaned path",
			files: []string{"/out/logo.png"},
			ref:   "./resources/logo.png",
			lang:  "es",
			want:  "logo.png",
		},
		{
			name:  "source resources copied with language prefix",
			files: []string{"/src/resources/board_dimensions.png"},
			ref:   "images/board_dimensions.png",
			lang:  "es",
			want:  "es_board_dimensions.png",
		},
		{
			name:  "source partial copied under matched name",
			files: []string{"/src/resources/topology.png"},
			ref:   "resources/network_topology_v2.png",
			lang:  "en",
			want:  "en_topology.png",
		},
		{
			name:  "short stems never match partially",
			files: []string{"/out/resources/ab.png"},
			ref:   "labels.png",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := testResolver(newFakeStore(tt.files...))
			got, err := r.Resolve(tt.ref, tt.lang)
			if tt.want == "" {
				if !errors.Is(err, ErrImageNotFound) {
					t.Fatalf("Resolve(%q) error = %v, want ErrImageNotFound", tt.ref, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestImageResolver_CopiesIntoOutput(t *testing.T) {
	t.Parallel()

	store := newFakeStore("/src/resources/board_dimensions.png")
	r := testResolver(store)

	if _, err := r.Resolve("board_dimensions.png", "en"); err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	src := filepath.FromSlash("/src/resources/board_dimensions.png")
	want := filepath.FromSlash("/out/en_board_dimensions.png")
	if store.copies[src] != want {
		t.Errorf("copied to %q, want %q", store.copies[src], want)
	}
}

func TestImageResolver_Rejects(t *testing.T) {
	t.Parallel()

	store := newFakeStore("/out/secret.png", "/secret.png")
	r := testResolver(store)

	for _, ref := range []string{"../secret.png", "resources/../../secret.png", "/secret.png", ""} {
		if _, err := r.Resolve(ref, "en"); !errors.Is(err, ErrImageNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrImageNotFound", ref, err)
		}
	}

	var nilResolver *ImageResolver
	if _, err := nilResolver.Resolve("x.png", "en"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("nil resolver error = %v, want ErrImageNotFound", err)
	}
}

func TestImageResolver_CopyFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore("/src/resources/chip.png")
	store.copyErr = errors.New("disk full")
	r := testResolver(store)

	_, err := r.Resolve("chip.png", "en")
	if !errors.Is(err, ErrImageCopy) {
		t.Fatalf("error = %v, want ErrImageCopy", err)
	}
}

func TestFigureWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"resources/pinout.png", `0.9\textwidth`},
		{"en_PIN_OUT_v1.png", `0.9\textwidth`},
		{"block_diagram.png", `0.9\textwidth`},
		{"board_dimensions.png", `0.6\textwidth`},
		{"physical.jpg", `0.6\textwidth`},
		{"schematic.pdf", `\textwidth`},
		{"circuit.png", `\textwidth`},
		{"system_block.png", `0.7\textwidth`},
		{"topology.png", `0.7\textwidth`},
		{"photo.jpg", `0.8\textwidth`},
	}
	for _, tt := range tests {
		if got := FigureWidth(tt.name); got != tt.want {
			t.Errorf("FigureWidth(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFigureLabel(t *testing.T) {
	t.Parallel()

	if got := FigureLabel("resources/en_pin.out.png"); got != "fig:resources-en-pin-out-png" {
		t.Errorf("FigureLabel() = %q", got)
	}
}

func TestImageStage(t *testing.T) {
	t.Parallel()

	store := newFakeStore("/out/resources/pinout.png")
	report := &Report{}
	stage := imageStage(testResolver(store), "en", report)

	got := stage(NewDocument("Intro ![Pinout Diagram](resources/pinout.png) and ![Gone](missing_file.png)")).String()

	wantContains := []string{
		"Intro \n\\begin{figure}[H]\n\\centering\n",
		`\includegraphics[width=0.9\textwidth]{resources/pinout.png}`,
		`\caption{Pinout Diagram}`,
		`\label{fig:resources-pinout-png}`,
		"\\end{figure}\n and [Image not found: missing_file.png]",
	}
	for _, want := range wantContains {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, got)
		}
	}

	warnings := report.Warnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "missing_file.png") {
		t.Errorf("warnings = %v, want one about missing_file.png", warnings)
	}
}

func TestImageStage_NilResolver(t *testing.T) {
	t.Parallel()

	report := &Report{}
	got := imageStage(nil, "en", report)(NewDocument("![a](b.png)")).String()
	if got != "[Image not found: b.png]" {
		t.Errorf("output = %q", got)
	}
	if len(report.Warnings()) != 1 {
		t.Errorf("warnings = %v, want 1", report.Warnings())
	}
}
