package column

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDtypeJSONRoundTrip(t *testing.T) {
	for dt := DtypeInvalid; dt < dtypeMax; dt++ {
		b, err := dt.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON(%s): %v", dt, err)
		}
		var got Dtype
		if err := got.UnmarshalJSON(b); err != nil {
			t.Fatalf("UnmarshalJSON(%q): %v", b, err)
		}
		if got != dt {
			t.Errorf("round trip %s -> %q -> %s", dt, b, got)
		}
	}
}

func TestDtypeUnmarshalUnknown(t *testing.T) {
	var dt Dtype
	if err := dt.UnmarshalJSON([]byte(`"quaternion"`)); err == nil {
		t.Fatal("expected error for unknown dtype name")
	}
}

func TestSchemaJSONUsesDtypeName(t *testing.T) {
	s := Schema{Name: "age", Dtype: DtypeI32, Nullable: true}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !jsonContains(b, `"dtype":"i32"`) {
		t.Errorf("schema JSON = %s, want dtype rendered as i32", b)
	}
}

func jsonContains(b []byte, sub string) bool {
	return len(b) >= len(sub) && indexOf(string(b), sub) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestTableSchemaLocateColumn(t *testing.T) {
	ts := TableSchema{
		{Name: "id", Dtype: DtypeI64},
		{Name: "name", Dtype: DtypeUtf8},
	}
	idx, s, err := ts.LocateColumn("name")
	if err != nil || idx != 1 || s.Dtype != DtypeUtf8 {
		t.Fatalf("LocateColumn(name) = (%d, %+v, %v)", idx, s, err)
	}
	if _, _, err := ts.LocateColumn("missing"); !errors.Is(err, errColumnNotFound) {
		t.Fatalf("LocateColumn(missing) error = %v, want errColumnNotFound", err)
	}
}

func TestTableSchemaNames(t *testing.T) {
	ts := TableSchema{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	got := ts.Names()
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}
