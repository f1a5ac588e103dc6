// Package report turns the text of an LMS task report into a per-aula completion record.
//
// A report looks like:
//
//	ALUNO: Maria Silva
//	Aula 1 - Leitura do capítulo (concluído)
//	Aula 2 - Exercícios
//	Atribuído
//	Aula 2 - Questionário (entregue com atraso)
//
// The first significant line names the aluno. Every "Aula <n> - <tarefa>" line is a task of aula n;
// a task is pending when a line containing "atribuído" follows it before the next task line.
package report

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

const (
	DefaultSessions = 60

	UnknownName  = "NOME INDEFINIDO"
	UnknownClass = "Desconhecida"

	// session classifications
	StatusAssigned       = "Atribuído"      // every task of the aula is pending
	StatusAlmostComplete = "Quase Completa" // some tasks of the aula are pending

	// ws also matches the non-breaking and typographic spaces browsers put in copied text
	ws = `[\s\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}\v]`
)

var (
	// errors
	ErrInvalidSessionCount = errors.New("session count must be positive")
	ErrSessionCount        = errors.New("status vector length does not match the session count")

	noiseRegex     = regexp.MustCompile(`(?i)filtro de tarefas|sem data de entrega|tudo`)
	nameLabelRegex = regexp.MustCompile(`(?i)^ALUNO:` + ws + `*`)
	assignedRegex  = regexp.MustCompile(`(?i)atribuído|atribuido`)

	taskHeaderRegex = regexp.MustCompile(
		`(?i)^Aula` + ws + `*(\d+)` + ws + `*-` + ws + `*(.+?)(?:` + ws + `*\((?:concluído|entregue com atraso)\))?$`,
	)
)

// PendingDetail describes the pending tasks of one aula.
type PendingDetail struct {
	Status string   `json:"status" yaml:"status"`
	Tasks  []string `json:"tarefas" yaml:"tarefas"`
}

// Record is the result of parsing one report.
type Record struct {
	Name           string                `json:"nome" yaml:"nome"`
	Class          string                `json:"turma" yaml:"turma"`
	TotalPending   int                   `json:"totalPendenciasCalculado" yaml:"totalPendenciasCalculado"`
	StatusVector   []int                 `json:"statusAulas" yaml:"statusAulas"`
	PendingDetails map[int]PendingDetail `json:"pendenciasDetalhadas" yaml:"pendenciasDetalhadas"`
}

// Delivered returns the number of aulas with no pending task.
func (r Record) Delivered() int {
	return len(r.StatusVector) - r.TotalPending
}

// Progress returns the delivered share of aulas as a rounded percentage.
func (r Record) Progress() int {
	return ProgressPercent(r.Delivered(), len(r.StatusVector))
}

// ProgressPercent returns round(delivered / sessions * 100), 0 when sessions is 0.
func ProgressPercent(delivered, sessions int) int {
	if sessions <= 0 {
		return 0
	}
	return int(math.Round(float64(delivered) / float64(sessions) * 100))
}

// sessionTasks accumulates the tasks seen for one aula.
type sessionTasks struct {
	total        int
	pending      int
	pendingNames []string
}

func (st *sessionTasks) classification() string {
	if st.pending == st.total {
		return StatusAssigned
	}
	return StatusAlmostComplete
}

// Parse parses `text` for a course of DefaultSessions aulas.
func Parse(text string) (Record, error) {
	return ParseN(text, DefaultSessions)
}

// ParseN parses `text` for a course of `sessions` aulas.
// Parse never fails on content: an empty or unrecognizable report yields the sentinel name and no pendências.
// It is safe for concurrent use.
func ParseN(text string, sessions int) (Record, error) {
	if sessions <= 0 {
		return Record{}, errors.Wrapf(ErrInvalidSessionCount, "got %d", sessions)
	}

	lines := normalizeLines(text)
	rec := Record{
		Name:           extractName(lines),
		Class:          UnknownClass,
		PendingDetails: make(map[int]PendingDetail),
	}
	rec.StatusVector, rec.TotalPending = assemble(scanTasks(lines), sessions, rec.PendingDetails)

	if len(rec.StatusVector) != sessions {
		return Record{}, errors.Wrapf(ErrSessionCount, "got %d positions, want %d", len(rec.StatusVector), sessions)
	}
	return rec, nil
}

// normalizeLines returns the significant lines of `text`: trimmed, non-empty and not noise.
func normalizeLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimFunc(line, isSpace)
		if line == "" || noiseRegex.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func extractName(lines []string) string {
	if len(lines) == 0 {
		return UnknownName
	}
	return strings.ToUpper(nameLabelRegex.ReplaceAllString(lines[0], ""))
}

// matchTaskHeader reports whether `line` is a task line and returns its aula number and task name.
// Aula numbers that do not fit an int are reported as 0, which no status position maps to.
func matchTaskHeader(line string) (session int, task string, ok bool) {
	m := taskHeaderRegex.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	session, err := strconv.Atoi(m[1])
	if err != nil {
		session = 0
	}
	return session, strings.TrimFunc(m[2], isSpace), true
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// scanTasks walks the lines after the name line and groups tasks per aula.
// A status line binds only to the task line right above it: the lookahead stops at the next task line.
func scanTasks(lines []string) map[int]*sessionTasks {
	tasks := make(map[int]*sessionTasks)
	for i := 1; i < len(lines); i++ {
		session, name, ok := matchTaskHeader(lines[i])
		if !ok {
			continue
		}

		st, ok := tasks[session]
		if !ok {
			st = new(sessionTasks)
			tasks[session] = st
		}
		st.total++

		for j := i + 1; j < len(lines); j++ {
			if taskHeaderRegex.MatchString(lines[j]) {
				break
			}
			if assignedRegex.MatchString(lines[j]) {
				st.pending++
				st.pendingNames = append(st.pendingNames, name)
				i = j // resume after the status line
				break
			}
		}
	}
	return tasks
}

// assemble builds the status vector for aulas 1..sessions, filling `details` for pending aulas.
// Position k of the vector holds aula k+1.
func assemble(tasks map[int]*sessionTasks, sessions int, details map[int]PendingDetail) ([]int, int) {
	vector := make([]int, 0, sessions)
	var pending int
	for i := 1; i <= sessions; i++ {
		st, ok := tasks[i]
		if !ok || st.pending == 0 {
			vector = append(vector, 1)
			continue
		}
		vector = append(vector, 0)
		pending++
		details[i] = PendingDetail{
			Status: st.classification(),
			Tasks:  st.pendingNames,
		}
	}
	return vector, pending
}
