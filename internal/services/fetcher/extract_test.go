package fetcher

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestExtractClassText(t *testing.T) {
	t.Parallel()
	page := []byte(`<html><body>
		<div class="sidebar">skip me</div>
		<div class="entry-content extra">
			<p>First  paragraph
			with a  wrapped line.</p>
			<p>Second paragraph.</p>
			<script>ignored()</script>
		</div>
	</body></html>`)

	got, err := extractClassText(page, "entry-content")
	if err != nil {
		t.Fatalf("extractClassText: %v", err)
	}
	want := "First paragraph with a wrapped line.\n\nSecond paragraph."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractClassTextMissing(t *testing.T) {
	t.Parallel()
	if _, err := extractClassText([]byte(`<html><body><p>hi</p></body></html>`), "entry-content"); err == nil {
		t.Fatal("expected error for missing class")
	}
}

func TestExtractHoroscopeSummarySkipsList(t *testing.T) {
	t.Parallel()
	page := []byte(`<html><body>
		<div class="horoscope_summary">
			<div>
				<p>Today brings clarity.</p>
				<ul><li>Lucky number: 7</li></ul>
				<p>Trust your instincts.</p>
			</div>
		</div>
	</body></html>`)

	got, err := extractHoroscopeSummary(page)
	if err != nil {
		t.Fatalf("extractHoroscopeSummary: %v", err)
	}
	want := "Today brings clarity.\n\nTrust your instincts."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTextByParagraphBreaks(t *testing.T) {
	t.Parallel()
	doc, err := html.Parse(strings.NewReader(`<div>one<br>two</div>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := textByParagraph(doc, nil)
	if got != "one\n\ntwo" {
		t.Fatalf("got %q", got)
	}
}
