package report

import (
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(ls ...string) string { return strings.Join(ls, "\n") }

func allOnes(n int) []int {
	v := make([]int, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func vectorWithZeros(n int, sessions ...int) []int {
	v := allOnes(n)
	for _, s := range sessions {
		v[s-1] = 0
	}
	return v
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantName string
		wantVec  []int
		wantDet  map[int]PendingDetail
	}{
		{
			name:     "empty report",
			text:     "",
			wantName: UnknownName,
			wantVec:  allOnes(DefaultSessions),
			wantDet:  map[int]PendingDetail{},
		},
		{
			name:     "blank lines only",
			text:     "  \n\t\n   ",
			wantName: UnknownName,
			wantVec:  allOnes(DefaultSessions),
			wantDet:  map[int]PendingDetail{},
		},
		{
			name:     "name with label",
			text:     "ALUNO: MARIA SILVA",
			wantName: "MARIA SILVA",
			wantVec:  allOnes(DefaultSessions),
			wantDet:  map[int]PendingDetail{},
		},
		{
			name:     "lowercase label is stripped and name upper-cased",
			text:     "aluno:   joão souza\nAula 1 - Leitura (concluído)",
			wantName: "JOÃO SOUZA",
			wantVec:  allOnes(DefaultSessions),
			wantDet:  map[int]PendingDetail{},
		},
		{
			name:     "name without label",
			text:     "Pedro Alves",
			wantName: "PEDRO ALVES",
			wantVec:  allOnes(DefaultSessions),
			wantDet:  map[int]PendingDetail{},
		},
		{
			name: "single pending task",
			text: lines(
				"ALUNO: Ana Lima",
				"Aula 5 - Leitura",
				"Atribuído",
				"Aula 6 - Resumo (concluído)",
			),
			wantName: "ANA LIMA",
			wantVec:  vectorWithZeros(DefaultSessions, 5),
			wantDet: map[int]PendingDetail{
				5: {Status: StatusAssigned, Tasks: []string{"Leitura"}},
			},
		},
		{
			name: "non-breaking spaces from a browser copy",
			text: lines(
				"\ufeffALUNO:\u00a0Maria Silva\u00a0",
				"Aula\u00a05\u00a0-\u202fLeitura",
				"Atribuído",
				"Aula\u20036 - Resumo\u00a0(concluído)",
			),
			wantName: "MARIA SILVA",
			wantVec:  vectorWithZeros(DefaultSessions, 5),
			wantDet: map[int]PendingDetail{
				5: {Status: StatusAssigned, Tasks: []string{"Leitura"}},
			},
		},
		{
			name: "partially pending aula",
			text: lines(
				"ALUNO: Ana Lima",
				"Aula 10 - Exercício A",
				"Atribuído",
				"Aula 10 - Exercício B (concluído)",
			),
			wantName: "ANA LIMA",
			wantVec:  vectorWithZeros(DefaultSessions, 10),
			wantDet: map[int]PendingDetail{
				10: {Status: StatusAlmostComplete, Tasks: []string{"Exercício A"}},
			},
		},
		{
			name: "all tasks of an aula pending keep their order",
			text: lines(
				"ALUNO: Ana Lima",
				"Aula 12 - Questionário",
				"Atribuído",
				"Aula 12 - Fórum",
				"Status: atribuido",
			),
			wantName: "ANA LIMA",
			wantVec:  vectorWithZeros(DefaultSessions, 12),
			wantDet: map[int]PendingDetail{
				12: {Status: StatusAssigned, Tasks: []string{"Questionário", "Fórum"}},
			},
		},
		{
			name: "status line does not cross the next task line",
			text: lines(
				"ALUNO: Ana Lima",
				"Aula 1 - Apresentação",
				"Aula 2 - Mapa conceitual",
				"Atribuído",
			),
			wantName: "ANA LIMA",
			wantVec:  vectorWithZeros(DefaultSessions, 2),
			wantDet: map[int]PendingDetail{
				2: {Status: StatusAssigned, Tasks: []string{"Mapa conceitual"}},
			},
		},
		{
			name: "noise line between task and status is ignored",
			text: lines(
				"ALUNO: Ana Lima",
				"Aula 3 - Mapa mental",
				"Sem data de entrega",
				"Atribuído",
				"Filtro de tarefas",
			),
			wantName: "ANA LIMA",
			wantVec:  vectorWithZeros(DefaultSessions, 3),
			wantDet: map[int]PendingDetail{
				3: {Status: StatusAssigned, Tasks: []string{"Mapa mental"}},
			},
		},
		{
			name: "intervening lines before the status",
			text: lines(
				"ALUNO: Ana Lima",
				"Aula 8 - Relatório",
				"Vencimento: 10/05",
				"Nota: -",
				"ATRIBUÍDO",
			),
			wantName: "ANA LIMA",
			wantVec:  vectorWithZeros(DefaultSessions, 8),
			wantDet: map[int]PendingDetail{
				8: {Status: StatusAssigned, Tasks: []string{"Relatório"}},
			},
		},
		{
			name: "late delivery counts as delivered",
			text: lines(
				"ALUNO: Ana Lima",
				"Aula 4 - Projeto final (entregue com atraso)",
				"Aula 9 - Debate (Concluído)",
			),
			wantName: "ANA LIMA",
			wantVec:  allOnes(DefaultSessions),
			wantDet:  map[int]PendingDetail{},
		},
		{
			name: "annotation is stripped from the pending task name",
			text: lines(
				"ALUNO: Ana Lima",
				"Aula 4 - Projeto final (entregue com atraso)",
				"Atribuído",
			),
			wantName: "ANA LIMA",
			wantVec:  vectorWithZeros(DefaultSessions, 4),
			wantDet: map[int]PendingDetail{
				4: {Status: StatusAssigned, Tasks: []string{"Projeto final"}},
			},
		},
		{
			name: "header spacing variants",
			text: lines(
				"ALUNO: Ana Lima",
				"aula7-Síntese",
				"Atribuído",
				"AULA  11  -  Revisão",
				"atribuído",
			),
			wantName: "ANA LIMA",
			wantVec:  vectorWithZeros(DefaultSessions, 7, 11),
			wantDet: map[int]PendingDetail{
				7:  {Status: StatusAssigned, Tasks: []string{"Síntese"}},
				11: {Status: StatusAssigned, Tasks: []string{"Revisão"}},
			},
		},
		{
			name: "aula outside the course is ignored",
			text: lines(
				"ALUNO: Ana Lima",
				"Aula 61 - Extra",
				"Atribuído",
				"Aula 0 - Boas-vindas",
				"Atribuído",
			),
			wantName: "ANA LIMA",
			wantVec:  allOnes(DefaultSessions),
			wantDet:  map[int]PendingDetail{},
		},
		{
			name: "windows line endings",
			text: "ALUNO: Ana Lima\r\nAula 60 - Encerramento\r\nAtribuído\r\n",
			wantName: "ANA LIMA",
			wantVec:  vectorWithZeros(DefaultSessions, 60),
			wantDet: map[int]PendingDetail{
				60: {Status: StatusAssigned, Tasks: []string{"Encerramento"}},
			},
		},
		{
			name: "name line is never read as a task",
			text: lines(
				"Aula 1 - Leitura",
				"Atribuído",
			),
			wantName: "AULA 1 - LEITURA",
			wantVec:  allOnes(DefaultSessions),
			wantDet:  map[int]PendingDetail{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)

			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, UnknownClass, got.Class)
			assert.Equal(t, tt.wantVec, got.StatusVector)
			assert.Equal(t, tt.wantDet, got.PendingDetails)
			assert.Equal(t, len(tt.wantDet), got.TotalPending)
		})
	}
}

func TestParseN(t *testing.T) {
	text := lines(
		"ALUNO: Ana Lima",
		"Aula 61 - Extra",
		"Atribuído",
	)

	got, err := ParseN(text, 61)
	require.NoError(t, err)
	assert.Len(t, got.StatusVector, 61)
	assert.Equal(t, 0, got.StatusVector[60])
	assert.Equal(t, 1, got.TotalPending)

	got, err = ParseN(text, 10)
	require.NoError(t, err)
	assert.Equal(t, allOnes(10), got.StatusVector)
	assert.Zero(t, got.TotalPending)
}

func TestParseN_invalidSessionCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := ParseN("ALUNO: Ana", n)
		if errors.Cause(err) != ErrInvalidSessionCount {
			t.Errorf("ParseN(%d) error = %v, wantErr %v", n, err, ErrInvalidSessionCount)
		}
	}
}

func TestParse_invariants(t *testing.T) {
	reports := []string{
		"",
		sampleReport,
		lines("ALUNO: X", "Aula 1 - A", "Atribuído", "Aula 1 - B", "Aula 2 - C", "Atribuído"),
		lines("x", "Atribuído", "Atribuído", "Aula 3 - D"),
	}
	for _, n := range []int{1, 12, DefaultSessions} {
		for _, text := range reports {
			got, err := ParseN(text, n)
			require.NoError(t, err)
			require.Len(t, got.StatusVector, n)

			var zeros int
			for pos, v := range got.StatusVector {
				require.Contains(t, []int{0, 1}, v)
				if v == 0 {
					zeros++
					assert.Contains(t, got.PendingDetails, pos+1)
				}
			}
			assert.Equal(t, zeros, got.TotalPending)
			assert.Len(t, got.PendingDetails, got.TotalPending)

			again, err := ParseN(text, n)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		}
	}
}

func TestParse_concurrent(t *testing.T) {
	want, err := Parse(sampleReport)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Parse(sampleReport)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestRecord_Progress(t *testing.T) {
	rec, err := Parse(sampleReport)
	require.NoError(t, err)

	assert.Equal(t, 3, rec.TotalPending)
	assert.Equal(t, 57, rec.Delivered())
	assert.Equal(t, 95, rec.Progress())

	assert.Equal(t, 0, ProgressPercent(3, 0))
	assert.Equal(t, 67, ProgressPercent(2, 3))
}

const sampleReport = `
ALUNO: Beatriz Nogueira
Filtro de tarefas
Aula 1 - Boas-vindas (concluído)
Aula 2 - Leitura dirigida
Atribuído
Aula 2 - Fórum de apresentação (concluído)
Aula 3 - Questionário 1
Sem data de entrega
Atribuído
Aula 4 - Mapa conceitual (entregue com atraso)
Aula 5 - Síntese
Aula 5 - Podcast
Atribuído
Aula 6 - Revisão (concluído)
`
