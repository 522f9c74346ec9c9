package extractor

import (
	"math"
	"testing"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

func newTestContextual() *ContextualExtractor {
	registry := NewRegistry()
	registry.Register(NewEmailExtractor())
	registry.Register(NewNameExtractor())
	registry.Register(NewPhoneExtractor())
	registry.Register(NewTitleExtractor())
	return NewContextualExtractor(registry, discardLogger())
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestContextualExtractorRegionWeighting(t *testing.T) {
	t.Parallel()

	e := newTestContextual()

	t.Run("scales confidence in high-weight regions", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<div class="team">Jane Doe</div>
		</body></html>`
		facts := e.Extract(html)

		var name *model.Fact
		for i, f := range facts {
			if f.Type == model.FactName && f.Value == "Jane Doe" {
				name = &facts[i]
			}
		}
		if name == nil {
			t.Fatalf("expected name fact from team region, got %v", facts)
		}
		// Name heuristic confidence 0.5 scaled by the high-region factor 1.2.
		if !almostEqual(name.Confidence, 0.6) {
			t.Errorf("expected confidence 0.6, got %f", name.Confidence)
		}
	})

	t.Run("higher weight class wins when markup matches several", func(t *testing.T) {
		t.Parallel()

		// "about" is a high keyword and "company" a low one; the
		// region must take the high weight on every run.
		html := `<html><body>
			<div class="about company">Jane Doe</div>
		</body></html>`

		for i := 0; i < 50; i++ {
			facts := e.Extract(html)

			var name *model.Fact
			for i, f := range facts {
				if f.Type == model.FactName && f.Value == "Jane Doe" {
					name = &facts[i]
				}
			}
			if name == nil {
				t.Fatalf("expected name fact, got %v", facts)
			}
			if !almostEqual(name.Confidence, 0.6) {
				t.Fatalf("expected confidence 0.6, got %f", name.Confidence)
			}
		}
	})

	t.Run("caps scaled confidence at 1.0", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<section id="contact">info@example.com</section>
		</body></html>`
		facts := e.Extract(html)

		var email *model.Fact
		for i, f := range facts {
			if f.Type == model.FactEmail {
				email = &facts[i]
			}
		}
		if email == nil {
			t.Fatalf("expected email fact, got %v", facts)
		}
		if email.Confidence != 1.0 {
			t.Errorf("expected capped confidence 1.0, got %f", email.Confidence)
		}
	})

	t.Run("applies medium weight", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<div class="faculty">Jane Doe</div>
		</body></html>`
		facts := e.Extract(html)

		var name *model.Fact
		for i, f := range facts {
			if f.Type == model.FactName {
				name = &facts[i]
			}
		}
		if name == nil {
			t.Fatalf("expected name fact, got %v", facts)
		}
		if !almostEqual(name.Confidence, 0.55) {
			t.Errorf("expected confidence 0.55, got %f", name.Confidence)
		}
	})

	t.Run("treats heading successor as high-weight region", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<h2>Contact</h2>
			<p>Jane Doe</p>
		</body></html>`
		facts := e.Extract(html)

		found := false
		for _, f := range facts {
			if f.Type == model.FactName && almostEqual(f.Confidence, 0.6) {
				found = true
			}
		}
		if !found {
			t.Errorf("expected high-weight name after contact heading, got %v", facts)
		}
	})

	t.Run("ignores unmarked regions", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<div class="hero-banner">Jane Doe</div>
		</body></html>`
		if facts := e.Extract(html); len(facts) != 0 {
			t.Errorf("expected no facts from unmarked region, got %v", facts)
		}
	})
}

func TestContextualExtractorVCards(t *testing.T) {
	t.Parallel()

	e := newTestContextual()

	html := `<html><body>
		<div class="vcard">
			<span class="fn">Jane Doe</span>
			<span class="org">Acme Corp</span>
			<span class="email">jane@acme.example</span>
			<span class="tel">+1 555 123 4567</span>
		</div>
	</body></html>`
	facts := e.Extract(html)

	want := map[model.FactType]string{
		model.FactName:         "Jane Doe",
		model.FactOrganization: "Acme Corp",
		model.FactEmail:        "jane@acme.example",
		model.FactPhone:        "+1 555 123 4567",
	}
	for typ, value := range want {
		found := false
		for _, f := range facts {
			if f.Type == typ && f.Value == value && almostEqual(f.Confidence, 0.90) {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %s fact %q at 0.90, got %v", typ, value, facts)
		}
	}
}

func TestContextualExtractorJSONLD(t *testing.T) {
	t.Parallel()

	e := newTestContextual()

	t.Run("extracts person entities", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<script type="application/ld+json">
			{"@type": "Person", "name": "Jane Doe", "email": "jane@acme.example", "jobTitle": "CTO"}
			</script>
		</head><body></body></html>`
		facts := e.Extract(html)

		want := map[model.FactType]string{
			model.FactName:  "Jane Doe",
			model.FactEmail: "jane@acme.example",
			model.FactTitle: "CTO",
		}
		for typ, value := range want {
			found := false
			for _, f := range facts {
				if f.Type == typ && f.Value == value && almostEqual(f.Confidence, 0.95) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s fact %q at 0.95, got %v", typ, value, facts)
			}
		}
	})

	t.Run("extracts organization entities", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<script type="application/ld+json">
			{"@type": "Organization", "name": "Acme Corp", "telephone": "+1 555 123 4567"}
			</script>
		</head><body></body></html>`
		facts := e.Extract(html)

		foundOrg := false
		for _, f := range facts {
			if f.Type == model.FactOrganization && f.Value == "Acme Corp" {
				foundOrg = true
			}
		}
		if !foundOrg {
			t.Errorf("expected organization fact, got %v", facts)
		}
	})

	t.Run("takes first entity of an array block", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<script type="application/ld+json">
			[{"@type": "Person", "name": "Jane Doe"}, {"@type": "Person", "name": "John Roe"}]
			</script>
		</head><body></body></html>`
		facts := e.Extract(html)

		values := factValues(facts)
		if !values["Jane Doe"] {
			t.Errorf("expected first entity, got %v", values)
		}
		if values["John Roe"] {
			t.Errorf("expected only the first entity, got %v", values)
		}
	})

	t.Run("skips malformed blocks", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<script type="application/ld+json">{not json</script>
		</head><body></body></html>`
		if facts := e.Extract(html); len(facts) != 0 {
			t.Errorf("expected no facts from malformed block, got %v", facts)
		}
	})

	t.Run("ignores unrelated entity types", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<script type="application/ld+json">
			{"@type": "Product", "name": "Widget"}
			</script>
		</head><body></body></html>`
		if facts := e.Extract(html); len(facts) != 0 {
			t.Errorf("expected no facts for Product entity, got %v", facts)
		}
	})
}
