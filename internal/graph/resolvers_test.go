package graph

import (
	"sort"
	"testing"
)

func TestExtractRefURI(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"raw uri string", "at://did:plc:abc/com.example.post/r1", "at://did:plc:abc/com.example.post/r1"},
		{"strong reference", map[string]interface{}{
			"uri": "at://did:plc:abc/com.example.post/r1",
			"cid": "c1",
		}, "at://did:plc:abc/com.example.post/r1"},
		{"nil", nil, ""},
		{"map without uri", map[string]interface{}{"cid": "c1"}, ""},
		{"unrelated value", 42, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractRefURI(tt.in); got != tt.want {
				t.Errorf("extractRefURI = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBlobValue(t *testing.T) {
	tests := []struct {
		name     string
		in       interface{}
		wantRef  string
		wantMime string
		wantSize int
	}{
		{
			name: "link wrapper",
			in: map[string]interface{}{
				"$type":    "blob",
				"ref":      map[string]interface{}{"$link": "QmdfTbBqBPQ7VNxZEYEj14VmRuZBkqFbiwReogJgS1zR1n"},
				"mimeType": "image/png",
				"size":     float64(1024),
			},
			wantRef:  "QmdfTbBqBPQ7VNxZEYEj14VmRuZBkqFbiwReogJgS1zR1n",
			wantMime: "image/png",
			wantSize: 1024,
		},
		{
			name:     "legacy cid key",
			in:       map[string]interface{}{"cid": "legacy-cid", "mimeType": "text/plain"},
			wantRef:  "legacy-cid",
			wantMime: "text/plain",
		},
		{
			name:     "bare string",
			in:       "some-content-id",
			wantRef:  "some-content-id",
			wantMime: "application/octet-stream",
		},
		{
			name:     "missing mime falls back",
			in:       map[string]interface{}{"ref": "r"},
			wantRef:  "r",
			wantMime: "application/octet-stream",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := blobValue(tt.in, "did:plc:abc")
			if out["ref"] != tt.wantRef {
				t.Errorf("ref = %v, want %q", out["ref"], tt.wantRef)
			}
			if out["mimeType"] != tt.wantMime {
				t.Errorf("mimeType = %v, want %q", out["mimeType"], tt.wantMime)
			}
			if out["size"] != tt.wantSize {
				t.Errorf("size = %v, want %d", out["size"], tt.wantSize)
			}
			if out["did"] != "did:plc:abc" {
				t.Errorf("did = %v", out["did"])
			}
		})
	}
}

func TestPropagateDID(t *testing.T) {
	obj := map[string]interface{}{"text": "hi"}
	propagateDID(obj, "did:plc:abc")
	if obj["did"] != "did:plc:abc" {
		t.Errorf("did not injected: %v", obj)
	}

	// An existing did is never overwritten.
	owned := map[string]interface{}{"did": "did:plc:other"}
	propagateDID(owned, "did:plc:abc")
	if owned["did"] != "did:plc:other" {
		t.Errorf("existing did overwritten: %v", owned)
	}

	// Arrays propagate into each element.
	arr := []interface{}{
		map[string]interface{}{"a": 1},
		map[string]interface{}{"b": 2},
	}
	propagateDID(arr, "did:plc:abc")
	for i, item := range arr {
		if item.(map[string]interface{})["did"] != "did:plc:abc" {
			t.Errorf("element %d missing did", i)
		}
	}

	// Scalars pass through untouched.
	if got := propagateDID("plain", "did:plc:abc"); got != "plain" {
		t.Errorf("scalar = %v", got)
	}
	if got := propagateDID(nil, nil); got != nil {
		t.Errorf("nil = %v", got)
	}
}

func TestCollectRefURIs(t *testing.T) {
	payload := map[string]interface{}{
		"text":    "hello",
		"related": "at://did:plc:abc/com.example.post/r1",
		"subject": map[string]interface{}{
			"uri": "at://did:plc:abc/com.example.post/r2",
			"cid": "c2",
		},
		// A uri without a cid is not a strong reference.
		"external": map[string]interface{}{"uri": "https://example.com"},
		"embeds": []interface{}{
			map[string]interface{}{
				"media": map[string]interface{}{
					"uri": "at://did:plc:abc/com.example.image/r3",
					"cid": "c3",
				},
			},
		},
	}

	uris := collectRefURIs(payload, nil)
	sort.Strings(uris)
	want := []string{
		"at://did:plc:abc/com.example.image/r3",
		"at://did:plc:abc/com.example.post/r1",
		"at://did:plc:abc/com.example.post/r2",
	}
	if len(uris) != len(want) {
		t.Fatalf("uris = %v, want %v", uris, want)
	}
	for i := range want {
		if uris[i] != want[i] {
			t.Errorf("uri %d = %q, want %q", i, uris[i], want[i])
		}
	}
}
