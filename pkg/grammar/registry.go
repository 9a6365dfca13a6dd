package grammar

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/scopemap/pkg/mapx"
	"github.com/Sumatoshi-tech/scopemap/pkg/scopemap"
)

// Registry holds compiled grammars keyed by scope name.
type Registry struct {
	byScope map[string]*Grammar
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byScope: make(map[string]*Grammar)}
}

// Add registers a grammar. Scope names must be unique.
func (r *Registry) Add(g *Grammar) error {
	if existing, ok := r.byScope[g.ScopeName]; ok {
		return fmt.Errorf("%w: %s (%s and %s)", ErrDuplicateScopeName, g.ScopeName, existing.Source, g.Source)
	}

	r.byScope[g.ScopeName] = g

	return nil
}

// LoadDir compiles every grammar file directly inside dir and returns how many were added.
func (r *Registry) LoadDir(dir string, opts ...scopemap.Option) (int, error) {
	return r.load(os.DirFS(dir), ".", dir, opts)
}

// LoadFS compiles every grammar file directly inside root of fsys.
func (r *Registry) LoadFS(fsys fs.FS, root string, opts ...scopemap.Option) (int, error) {
	return r.load(fsys, root, root, opts)
}

func (r *Registry) load(fsys fs.FS, root, label string, opts []scopemap.Option) (int, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return 0, fmt.Errorf("read grammar directory: %w", err)
	}

	added := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if _, formatErr := FormatOf(entry.Name()); formatErr != nil {
			continue
		}

		data, readErr := fs.ReadFile(fsys, path.Join(root, entry.Name()))
		if readErr != nil {
			return added, fmt.Errorf("read grammar: %w", readErr)
		}

		def, loadErr := LoadBytes(filepath.Join(label, entry.Name()), data)
		if loadErr != nil {
			return added, loadErr
		}

		compiled, compileErr := Compile(def, opts...)
		if compileErr != nil {
			return added, compileErr
		}

		addErr := r.Add(compiled)
		if addErr != nil {
			return added, addErr
		}

		added++
	}

	return added, nil
}

// ByScopeName returns the grammar registered under scopeName.
func (r *Registry) ByScopeName(scopeName string) (*Grammar, bool) {
	g, ok := r.byScope[scopeName]

	return g, ok
}

// Grammars returns every registered grammar ordered by scope name.
func (r *Registry) Grammars() []*Grammar {
	return mapx.SortedValues(r.byScope)
}

// ForPath picks the grammar for a file. Declared file types are tried first, the longest
// matching one winning; otherwise the language detected from the name and content is
// compared with grammar names and parser names.
func (r *Registry) ForPath(filePath string, content []byte) (*Grammar, error) {
	base := filepath.Base(filePath)

	var (
		best      *Grammar
		bestScore int
	)

	for _, g := range r.Grammars() {
		for _, fileType := range g.FileTypes {
			if score := fileTypeScore(base, fileType); score > bestScore {
				best, bestScore = g, score
			}
		}
	}

	if best != nil {
		return best, nil
	}

	lang := enry.GetLanguage(base, content)
	if lang != "" {
		idx := slices.IndexFunc(r.Grammars(), func(g *Grammar) bool {
			return strings.EqualFold(g.Name, lang) || strings.EqualFold(g.Parser, lang)
		})
		if idx >= 0 {
			return r.Grammars()[idx], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoGrammar, filePath)
}

// fileTypeScore rates how well fileType matches a file name: a whole-name match or an
// extension match scores the file type's length, anything else scores zero.
func fileTypeScore(base, fileType string) int {
	switch {
	case base == fileType:
		return len(fileType) + 1
	case strings.HasSuffix(base, "."+fileType):
		return len(fileType)
	default:
		return 0
	}
}
