package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/BlogHub/internal/processor"
)

func TestClassifyTypePriority(t *testing.T) {
	cases := []struct {
		title   string
		content string
		want    ContentType
	}{
		{"Cómo validar una factura AMDA", "", HowTo},
		{"Guía", "<p>Paso 1: revisa el folio</p>", HowTo},
		{"Detectar un REPUVE falso", "", ValidationGuide},
		{"El fraude de las facturas", "", FraudDetection},
		{"Tu tarjeta de circulación", "", DocumentGuide},
		{"Noticias de la semana", "sin palabras clave", Article},
	}
	for _, tc := range cases {
		got := ClassifyType(processor.Post{Title: tc.title, FullContent: tc.content})
		if got != tc.want {
			t.Fatalf("ClassifyType(%q) = %s, want %s", tc.title, got, tc.want)
		}
	}
}

func TestCategorizeTitleOutweighsBody(t *testing.T) {
	p := processor.Post{
		Title:       "Cómo validar una factura AMDA",
		FullContent: "<p>Un vehículo con sello dudoso</p>",
	}
	got := Categorize(p)
	require.NotEmpty(t, got)
	assert.Equal(t, "AMDA", got[0])
	assert.Contains(t, got, "Validación Vehicular")

	idxAMDA := indexOf(got, "AMDA")
	for _, bodyOnly := range []string{"REPUVE", "Industria Automotriz"} {
		if i := indexOf(got, bodyOnly); i >= 0 {
			assert.Less(t, idxAMDA, i, "title match must rank above body-only %s", bodyOnly)
		}
	}
}

func TestCategorizeCapAndZeroScores(t *testing.T) {
	assert.Empty(t, Categorize(processor.Post{Title: "Hola", FullContent: "mundo"}))

	p := processor.Post{
		Title: "repuve amda tarjeta de circulación fraude validar prevención servicio",
	}
	got := Categorize(p)
	assert.Len(t, got, MaxCategories)
}

func TestCategorizeTieKeepsTableOrder(t *testing.T) {
	// sat 与 ley 各在正文命中一次，同分时按表顺序
	got := Categorize(processor.Post{Title: "x", FullContent: "ley y sat"})
	require.Len(t, got, 2)
	assert.Equal(t, []string{"SAT", "Legislación"}, got)
}

func TestDescribe(t *testing.T) {
	body := `<p>Riesgo alto con el REPUVE y la AMDA.</p><img src="a.png"><a href="https://sat.gob.mx">Fuentes</a>`
	md := Describe(processor.Post{Title: "Paso a paso", FullContent: body})

	assert.True(t, md.HasImages)
	assert.True(t, md.HasLinks)
	assert.True(t, md.HasSources)
	assert.True(t, md.MentionsREPUVE)
	assert.True(t, md.MentionsAMDA)
	assert.True(t, md.MentionsSAT)
	assert.Equal(t, RiskHigh, md.RiskLevel)
	assert.Equal(t, HowTo, md.ContentType)
	assert.Equal(t, 1, md.ReadingTime)
	assert.Greater(t, md.WordCount, 5)
}

func TestReadingTime(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 200: 1, 201: 2, 1000: 5}
	for words, want := range cases {
		if got := ReadingTime(words); got != want {
			t.Fatalf("ReadingTime(%d) = %d, want %d", words, got, want)
		}
	}
}

func TestWordCountStripsTags(t *testing.T) {
	assert.Equal(t, 3, WordCount("<p>uno <b>dos</b></p>\n<p>tres</p>"))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("palabra ", n))
}
