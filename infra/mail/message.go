// Package mail builds the HTML report emails and delivers them over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/kilianp07/opsreport/infra/charts"
	"github.com/kilianp07/opsreport/infra/pdf"
)

const (
	typePDF = "application/pdf"
	typePNG = "image/png"
	typeCSV = "text/csv"
)

// Separator joins the text blocks of the body.
const Separator = "<br></br>"

// Attachment is a file sent alongside the body.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// Image is an inline picture referenced from the body by content id.
type Image struct {
	Name    string
	CID     string
	Content []byte
}

// Message is an HTML email under construction.
type Message struct {
	Sender      string
	Subject     string
	Recipients  []string
	Signature   string
	Text        []string
	Attachments []Attachment
	Images      []Image
}

// NewMessage returns an empty message.
func NewMessage(sender, subject, signature string, recipients []string) *Message {
	return &Message{Sender: sender, Subject: subject, Signature: signature, Recipients: recipients}
}

// AddText appends an HTML block to the body.
func (m *Message) AddText(text string) {
	m.Text = append(m.Text, text)
}

// AttachFile reads path and attaches it under name.
func (m *Message) AttachFile(name, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("attach %s: %w", path, err)
	}
	if name == "" {
		name = filepath.Base(path)
	}
	m.Attachments = append(m.Attachments, Attachment{Name: name, ContentType: contentType(name), Content: b})
	return nil
}

// AttachPlots renders figs into a single PDF attached as name.
func (m *Message) AttachPlots(name string, figs []*charts.Figure) error {
	b, err := pdf.Bytes(figs)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	m.Attachments = append(m.Attachments, Attachment{Name: name, ContentType: typePDF, Content: b})
	return nil
}

// AddImage embeds a PNG and references it from the body.
func (m *Message) AddImage(name string, png []byte) {
	cid := fmt.Sprintf("%d", len(m.Images))
	m.Images = append(m.Images, Image{Name: name, CID: cid, Content: png})
	m.AddText(fmt.Sprintf(`<p><img src="cid:%s"></p>`, cid))
}

// Body is the HTML body: every text block followed by the signature.
func (m *Message) Body() string {
	return strings.Join(m.Text, Separator) + Separator + m.Signature
}

// Build converts m into a go-mail message.
func (m *Message) Build() (*gomail.Msg, error) {
	if len(m.Recipients) == 0 {
		return nil, fmt.Errorf("message %q has no recipients", m.Subject)
	}
	msg := gomail.NewMsg()
	if err := msg.From(m.Sender); err != nil {
		return nil, fmt.Errorf("sender %s: %w", m.Sender, err)
	}
	if err := msg.To(m.Recipients...); err != nil {
		return nil, fmt.Errorf("recipients: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, m.Body())
	for _, a := range m.Attachments {
		err := msg.AttachReader(a.Name, bytes.NewReader(a.Content),
			gomail.WithFileContentType(gomail.ContentType(a.ContentType)))
		if err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Name, err)
		}
	}
	for _, img := range m.Images {
		err := msg.EmbedReader(img.CID, bytes.NewReader(img.Content),
			gomail.WithFileContentType(typePNG), gomail.WithFileContentID(img.CID))
		if err != nil {
			return nil, fmt.Errorf("embed %s: %w", img.Name, err)
		}
	}
	return msg, nil
}

// WriteTo writes the encoded message to w.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	msg, err := m.Build()
	if err != nil {
		return 0, err
	}
	return msg.WriteTo(w)
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return typePDF
	case ".png":
		return typePNG
	case ".csv":
		return typeCSV
	default:
		return string(gomail.TypeAppOctetStream)
	}
}
