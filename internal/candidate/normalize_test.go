package candidate

import "testing"

func TestNormalizeURLProtocolRelative(t *testing.T) {
	got := NormalizeURL("//example.org/tool")
	want := "https://example.org/tool"
	if got != want {
		t.Fatalf("NormalizeURL() = %q, want %q", got, want)
	}
}

func TestNormalizeTitleFoldsCaseAndWhitespace(t *testing.T) {
	a := NormalizeTitle("  My   Tool  ")
	b := NormalizeTitle("my tool")
	if a != b {
		t.Fatalf("NormalizeTitle mismatch: %q vs %q", a, b)
	}
}

func TestLoadCandidatesBareArray(t *testing.T) {
	data := []byte(`[{"name":"Tool A","homepage":"//example.org/a"},{"title":"Tool B","urls":["https://example.org/b"]}]`)
	cs, err := LoadCandidates(data)
	if err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}
	if len(cs) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cs))
	}
	if cs[0].Homepage != "https://example.org/a" {
		t.Fatalf("homepage not rewritten: %q", cs[0].Homepage)
	}
	if cs[1].Title != "Tool B" {
		t.Fatalf("title not decoded: %q", cs[1].Title)
	}
}

func TestLoadCandidatesWrappedList(t *testing.T) {
	data := []byte(`{"list":[{"name":"Tool C"}]}`)
	cs, err := LoadCandidates(data)
	if err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}
	if len(cs) != 1 || cs[0].Title != "Tool C" {
		t.Fatalf("unexpected candidates: %+v", cs)
	}
}

func TestDeduplicateKeepsFirstOccurrence(t *testing.T) {
	in := []Candidate{
		{ID: "1", Title: "Tool A", Homepage: "https://example.org/a"},
		{ID: "2", Title: "tool a", Homepage: "https://EXAMPLE.org/a"},
		{ID: "3", Title: "Tool B", Homepage: "https://example.org/b"},
	}
	out := Deduplicate(in)
	if len(out) != 2 {
		t.Fatalf("got %d candidates after dedup, want 2", len(out))
	}
	if out[0].ID != "1" {
		t.Fatalf("expected first occurrence to win, got ID %q", out[0].ID)
	}
}

func TestLoadCandidatesDropsEmptyTitle(t *testing.T) {
	data := []byte(`[{"title":"","homepage":"https://example.org/a"},{"title":"Tool B"}]`)
	cs, err := LoadCandidates(data)
	if err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}
	if len(cs) != 1 || cs[0].Title != "Tool B" {
		t.Fatalf("expected titleless record dropped, got %+v", cs)
	}
}

func TestLoadCandidatesMergesEDAMTagsFromAllFields(t *testing.T) {
	data := []byte(`[{
		"title": "Tool A",
		"tags": ["existing"],
		"topic": [{"term": "Genomics"}],
		"data": [{"term": "Sequence"}],
		"operation": [{"term": "Alignment"}],
		"format": [{"term": "FASTA"}],
		"function": [{
			"operation": [{"term": "Clustering"}],
			"input": [{"data": [{"term": "Matrix"}]}],
			"output": [{"data": [{"term": "Report"}], "format": [{"term": "JSON"}]}]
		}]
	}]`)
	cs, err := LoadCandidates(data)
	if err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}
	if len(cs) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cs))
	}
	want := []string{"existing", "Genomics", "Sequence", "Alignment", "FASTA", "Clustering", "Matrix", "Report", "JSON"}
	got := cs[0].Tags
	if len(got) != len(want) {
		t.Fatalf("got tags %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("tag %d: got %q, want %q (full: %v)", i, got[i], w, got)
		}
	}
}

func TestSelectIdentifiersPriority(t *testing.T) {
	ids := selectIdentifiers(map[string]any{
		"PMCID": "PMC12345",
		"pmid":  "999",
		"doi":   "10.1000/xyz",
	})
	if len(ids) != 3 {
		t.Fatalf("got %d ids, want 3", len(ids))
	}
	if ids[0].Kind != "pmcid" || ids[0].Value != "PMC12345" {
		t.Fatalf("unexpected first id: %+v", ids[0])
	}
}
