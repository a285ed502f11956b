package testutil

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFixturePath(t *testing.T) {
	t.Parallel()

	path := FixturePath(t, "books.graphql")
	if got := filepath.Base(filepath.Dir(path)); got != "testdata" {
		t.Fatalf("FixturePath() = %s, want a file under testdata", path)
	}
	if !strings.Contains(ReadFixture(t, "books.graphql"), "@GraphQLServer") {
		t.Fatal("ReadFixture() did not return the books schema")
	}
}
