package vdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// A Transcluder supplies the text of documents named by #base directives.
// Transclude returns the document's contents as a sequence of text
// fragments; the decoder concatenates and splices them into the input
// stream at the directive's position.
type Transcluder interface {
	Transclude(name string) ([]string, error)
}

// An IgnoreTranscluder treats every transcluded document as empty, turning
// #base directives into no-ops.
type IgnoreTranscluder struct{}

func (IgnoreTranscluder) Transclude(string) ([]string, error) {
	return nil, nil
}

// A DisabledTranscluder fails every transclusion. It is the decoder's
// default: transclusion must be enabled explicitly.
type DisabledTranscluder struct{}

func (DisabledTranscluder) Transclude(string) ([]string, error) {
	return nil, errors.New("transclusion disabled")
}

// A RegistryTranscluder resolves names against documents registered in
// memory. It is safe for concurrent use and is intended primarily for
// tests.
type RegistryTranscluder struct {
	mu   sync.RWMutex
	docs map[string]string
}

// NewRegistryTranscluder returns an empty RegistryTranscluder.
func NewRegistryTranscluder() *RegistryTranscluder {
	return &RegistryTranscluder{docs: make(map[string]string)}
}

// Register stores a document under name. It fails if the name is already
// registered.
func (t *RegistryTranscluder) Register(name, document string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.docs[name]; ok {
		return fmt.Errorf("vdf: document %q already registered", name)
	}
	t.docs[name] = document
	return nil
}

// Unregister removes a registered document. It fails if no document with
// the given name is registered.
func (t *RegistryTranscluder) Unregister(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.docs[name]; !ok {
		return fmt.Errorf("vdf: no document registered with name %q", name)
	}
	delete(t.docs, name)
	return nil
}

func (t *RegistryTranscluder) Transclude(name string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	doc, ok := t.docs[name]
	if !ok {
		return nil, fmt.Errorf("no document registered with name %q", name)
	}
	return []string{doc}, nil
}

// A FileTranscluder resolves names as file paths relative to a root
// directory and streams file contents in bounded-size fragments.
type FileTranscluder struct {
	root         string
	fragmentSize int
}

const defaultFragmentSize = 4096

// NewFileTranscluder returns a FileTranscluder rooted at dir.
func NewFileTranscluder(dir string) *FileTranscluder {
	return &FileTranscluder{root: dir, fragmentSize: defaultFragmentSize}
}

func (t *FileTranscluder) Transclude(name string) ([]string, error) {
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("name %q escapes the transcluder root", name)
	}
	f, err := os.Open(filepath.Join(t.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var fragments []string
	buf := make([]byte, t.fragmentSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			fragments = append(fragments, string(buf[:n]))
		}
		if err == io.EOF {
			return fragments, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
