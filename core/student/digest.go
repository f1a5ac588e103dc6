package student

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/florescendo/talentos/core"
)

const DigestTemplate = "pendency_digest"

type (
	DigestEntry struct {
		Name     string
		Class    string
		Pending  int
		Progress int
		Sessions string // "3, 12, 40"
	}

	DigestData struct {
		GeneratedAt time.Time
		Total       int // roster size
		Entries     []DigestEntry
	}
)

// BuildDigest lists the students with at least one pending aula, most pending first.
func BuildDigest(students []Student, now time.Time) DigestData {
	data := DigestData{GeneratedAt: now.UTC(), Total: len(students)}
	for _, s := range students {
		if s.TotalPending == 0 {
			continue
		}
		sessions := s.PendingSessions()
		strs := make([]string, 0, len(sessions))
		for _, n := range sessions {
			strs = append(strs, strconv.Itoa(n))
		}
		data.Entries = append(data.Entries, DigestEntry{
			Name:     s.Name,
			Class:    s.Class,
			Pending:  s.TotalPending,
			Progress: s.Progress(),
			Sessions: strings.Join(strs, ", "),
		})
	}
	sort.SliceStable(data.Entries, func(i, j int) bool {
		if data.Entries[i].Pending != data.Entries[j].Pending {
			return data.Entries[i].Pending > data.Entries[j].Pending
		}
		return data.Entries[i].Name < data.Entries[j].Name
	})
	return data
}

func (d DigestData) csv() (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"nome", "turma", "pendencias", "progresso", "aulas"}); err != nil {
		return nil, err
	}
	for _, e := range d.Entries {
		row := []string{e.Name, e.Class, strconv.Itoa(e.Pending), strconv.Itoa(e.Progress), e.Sessions}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf, w.Error()
}

// NewDigestMessage builds the pendency digest email, with the entries attached as CSV.
func NewDigestMessage(data DigestData, recipients []mail.Address) (*core.EmailMessage, error) {
	msg := &core.EmailMessage{
		To:           recipients,
		Subject:      "Resumo de pendências",
		TemplateName: DigestTemplate,
		TemplateData: data,
	}
	if len(data.Entries) > 0 {
		buf, err := data.csv()
		if err != nil {
			return nil, errors.Wrap(err, "writing digest csv")
		}
		if err = msg.Attach(buf, "pendencias.csv", "text/csv"); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// SendDigest emails the pendency digest of the whole roster.
func (svc *Service) SendDigest(ctx context.Context, mailer core.EmailService, recipients []mail.Address) (DigestData, error) {
	students, err := svc.QueryAll(ctx)
	if err != nil {
		return DigestData{}, errors.Wrap(err, "querying students")
	}
	data := BuildDigest(students, time.Now())
	msg, err := NewDigestMessage(data, recipients)
	if err != nil {
		return DigestData{}, err
	}
	mailer.SendMessages(msg)
	return data, nil
}
