package dcache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"bulkfix/internal/diag"
	"bulkfix/internal/source"
)

func snapshotOf(content string) *source.Snapshot {
	b := source.NewBuilder("")
	b.AddVirtual("a.txt", []byte(content))
	return b.Snapshot()
}

func TestKeyForDependsOnInputs(t *testing.T) {
	base := KeyFor(snapshotOf("x \n"), []string{"whitespace"}, nil)
	if base != KeyFor(snapshotOf("x \n"), []string{"whitespace"}, nil) {
		t.Fatalf("key must be deterministic")
	}
	variants := map[string]Key{
		"content":   KeyFor(snapshotOf("x\n"), []string{"whitespace"}, nil),
		"analyzers": KeyFor(snapshotOf("x \n"), []string{"whitespace", "rename"}, nil),
		"filter":    KeyFor(snapshotOf("x \n"), []string{"whitespace"}, diag.NewCodeSet("WS001")),
	}
	for name, k := range variants {
		if k == base {
			t.Errorf("changing %s must change the key", name)
		}
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := KeyFor(snapshotOf("x \n"), []string{"whitespace"}, nil)

	if _, ok, err := c.Get(key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := []diag.Diagnostic{
		diag.NewWarning("WS001", source.Span{File: 0, Start: 1, End: 2}, "trailing whitespace").
			WithNote(source.Span{File: 0, Start: 0, End: 1}, "line starts here"),
		diag.New(diag.SevInfo, "WS002", source.Span{File: 0, Start: 3, End: 3}, "missing final newline"),
	}
	if err := c.Put(key, want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	keys, err := c.Keys()
	if err != nil || len(keys) != 1 || keys[0] != key.String() {
		t.Fatalf("unexpected keys %v (%v)", keys, err)
	}
	tmp, _ := filepath.Glob(filepath.Join(c.Dir(), "diags", "tmp-*"))
	if len(tmp) != 0 {
		t.Fatalf("temp files left behind: %v", tmp)
	}
}

func TestDropAll(t *testing.T) {
	c, err := OpenAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := KeyFor(snapshotOf(""), nil, nil)
	if err := c.Put(key, nil); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Fatalf("expected miss after DropAll")
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Fatalf("cache dir should be recreated: %v", err)
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	if err := c.Put(Key{}, nil); err != nil {
		t.Fatalf("put on nil: %v", err)
	}
	if _, ok, err := c.Get(Key{}); ok || err != nil {
		t.Fatalf("get on nil: ok=%v err=%v", ok, err)
	}
}
