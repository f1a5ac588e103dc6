package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Tarefas</title><style>.x { color: red }</style></head>
<body>
  <div class="user">ALUNO:
     Carla   Dias</div>
  <script>var tudo = "Aula 9 - Falso";</script>
  <ul>
    <li>Aula 1 - Leitura <em>(concluído)</em></li>
    <li>Aula 2 - Resenha</li>
    <li><span class="badge">Atribuído</span></li>
  </ul>
  <table><tr><td>Aula 3 - Prova</td></tr><tr><td>Atribuído</td></tr></table>
</body>
</html>`

func TestExtractText(t *testing.T) {
	text, err := ExtractText(strings.NewReader(samplePage))
	require.NoError(t, err)

	want := strings.Join([]string{
		"ALUNO: Carla Dias",
		"Aula 1 - Leitura (concluído)",
		"Aula 2 - Resenha",
		"Atribuído",
		"Aula 3 - Prova",
		"Atribuído",
	}, "\n")
	assert.Equal(t, want, text)

	rec, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "CARLA DIAS", rec.Name)
	assert.Equal(t, 2, rec.TotalPending)
	assert.Equal(t, []string{"Resenha"}, rec.PendingDetails[2].Tasks)
	assert.Equal(t, []string{"Prova"}, rec.PendingDetails[3].Tasks)
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: samplePage, want: true},
		{in: "  <html><body>x</body></html>", want: true},
		{in: "<div>x</div><body>", want: true},
		{in: "ALUNO: Ana\nAula 1 - Leitura", want: false},
		{in: "", want: false},
	}
	for _, tt := range tests {
		if got := LooksLikeHTML(tt.in); got != tt.want {
			t.Errorf("LooksLikeHTML(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
