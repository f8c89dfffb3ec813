package plugin

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestRegisterLoader(t *testing.T) {
	ext := ".register-test"
	loader := newFakeLoader()
	RegisterLoader(ext, func(zerolog.Logger) (Loader, error) {
		return loader, nil
	})

	factory, err := GetLoaderFactory(ext)
	if err != nil {
		t.Fatalf("GetLoaderFactory() error = %v", err)
	}

	got, err := factory(zerolog.Nop())
	if err != nil {
		t.Fatalf("factory() error = %v", err)
	}
	if got != loader {
		t.Error("factory() returned a different loader")
	}

	found := false
	for _, e := range ListRegisteredExtensions() {
		if e == ext {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("extension %q not found in %v", ext, ListRegisteredExtensions())
	}
}

func TestGetLoaderFactory_CaseInsensitive(t *testing.T) {
	RegisterLoader(".MixedCase", func(zerolog.Logger) (Loader, error) {
		return newFakeLoader(), nil
	})

	if _, err := GetLoaderFactory(".mixedcase"); err != nil {
		t.Errorf("GetLoaderFactory(.mixedcase) error = %v", err)
	}
	if _, err := GetLoaderFactory(".MIXEDCASE"); err != nil {
		t.Errorf("GetLoaderFactory(.MIXEDCASE) error = %v", err)
	}
}

func TestGetLoaderFactory_NotFound(t *testing.T) {
	if _, err := GetLoaderFactory(".non-existent-xyz123"); err == nil {
		t.Error("GetLoaderFactory() with unknown extension error = nil, want error")
	}
}

func TestListRegisteredExtensions(t *testing.T) {
	exts := ListRegisteredExtensions()

	found := false
	for i, ext := range exts {
		if ext == ".wasm" {
			found = true
		}
		if i > 0 && exts[i-1] > ext {
			t.Errorf("extensions not sorted: %v", exts)
		}
	}
	if !found {
		t.Errorf(".wasm loader not registered: %v", exts)
	}
}

func TestRegisterLoader_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			RegisterLoader(".concurrent-test", func(zerolog.Logger) (Loader, error) {
				return newFakeLoader(), nil
			})
		}()
		go func() {
			defer wg.Done()
			_ = ListRegisteredExtensions()
		}()
	}
	wg.Wait()

	if _, err := GetLoaderFactory(".concurrent-test"); err != nil {
		t.Errorf("GetLoaderFactory() error = %v", err)
	}
}

func TestLoaderFor_CachesFactoryLoader(t *testing.T) {
	calls := 0
	RegisterLoader(".cached-test", func(zerolog.Logger) (Loader, error) {
		calls++
		return newFakeLoader(), nil
	})

	m := NewManager()
	first, err := m.loaderFor("a.cached-test")
	if err != nil {
		t.Fatalf("loaderFor() error = %v", err)
	}
	second, err := m.loaderFor("b.CACHED-TEST")
	if err != nil {
		t.Fatalf("loaderFor() error = %v", err)
	}
	if first != second {
		t.Error("loaderFor() created a second loader for the same extension")
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
}

func TestExtensions_IncludesOverrides(t *testing.T) {
	m := NewManager(WithLoader(".override-only", newFakeLoader()))

	seen := map[string]int{}
	for _, ext := range m.extensions() {
		seen[ext]++
	}
	if seen[".override-only"] != 1 {
		t.Errorf("extensions() = %v, want .override-only once", m.extensions())
	}
	if seen[".wasm"] != 1 {
		t.Errorf("extensions() = %v, want .wasm once", m.extensions())
	}
}
