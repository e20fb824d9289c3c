package mailtemplates

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"strings"
	texttemplate "text/template"

	root "github.com/bloodline/backend"
	"github.com/bloodline/backend/notifications"
)

// AvailableTemplates is a map that stores the parsed email templates by
// their file key. The key is the filename without the extension.
var AvailableTemplates map[TemplateFile]*htmltemplate.Template

// TemplateFile represents an email template key. Every email template should
// have a key that identifies it, which is the filename without the extension.
type TemplateFile string

// MailTemplate struct represents an email template. It includes the file key
// and the notification placeholder to be sent. The file key is the filename
// of the template without the extension. The notification placeholder includes
// the plain body template to be used as a fallback for email clients that do
// not support HTML, and the mail subject.
type MailTemplate struct {
	File        TemplateFile
	Placeholder notifications.Notification
}

// Load function parses the email templates embedded under assets/. Returns
// an error if a template cannot be parsed. It must be called once at startup
// before any template is executed.
func Load() error {
	htmlFiles := make(map[TemplateFile]*htmltemplate.Template)
	if err := fs.WalkDir(root.Assets, "assets", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// only process files with a ".html" extension
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			return nil
		}
		tmpl, err := htmltemplate.ParseFS(root.Assets, path)
		if err != nil {
			return fmt.Errorf("could not parse template %s: %w", path, err)
		}
		// remove the ".html" extension from the filename to build the key
		filename := strings.TrimSuffix(entry.Name(), ".html")
		htmlFiles[TemplateFile(filename)] = tmpl
		return nil
	}); err != nil {
		return err
	}
	AvailableTemplates = htmlFiles
	return nil
}

// ExecTemplate method checks if the template file exists in the available
// mail templates and if it does, it executes the template with the data
// provided. If it doesn't exist, it returns an error. If the plain body
// placeholder is not empty, it executes the plain text template with the
// data provided. It returns the notification with the body and plain body
// filled with the data provided.
func (mt MailTemplate) ExecTemplate(data any) (*notifications.Notification, error) {
	tmpl, ok := AvailableTemplates[mt.File]
	if !ok {
		return nil, fmt.Errorf("template not found")
	}
	// create a new notification with the subject and plain body of the
	// template placeholder
	n := &notifications.Notification{
		Subject:   mt.Placeholder.Subject,
		PlainBody: mt.Placeholder.PlainBody,
	}
	// inflate the template with the data
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return nil, err
	}
	// set the body of the notification
	n.Body = buf.String()
	// if the plain body is not empty, execute the template with the data
	// provided
	if n.PlainBody != "" {
		tmpl, err := texttemplate.New("plain").Parse(n.PlainBody)
		if err != nil {
			return nil, err
		}
		buf := new(bytes.Buffer)
		if err := tmpl.Execute(buf, data); err != nil {
			return nil, err
		}
		n.PlainBody = buf.String()
	}
	return n, nil
}
