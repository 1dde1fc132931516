package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/s/levelup/internal/models"
)

// Mailer - отправка писем. Все вызывающие обязаны трактовать ошибку
// как некритичную: письмо не должно ломать оформление заказа.
type Mailer interface {
	Send(to, subject, templateName string, data map[string]interface{}) error
}

// SMTPMailer шлет письма через SMTP. В режиме disabled письма только
// логируются - удобно для разработки без почтового сервера.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	disabled bool
	db       *gorm.DB
	logger   *zap.Logger
}

func NewSMTPMailer(host string, port int, user, pass, from string, disabled bool, db *gorm.DB, logger *zap.Logger) *SMTPMailer {
	if disabled {
		logger.Info("email sending is DISABLED, emails will be logged instead")
	}
	return &SMTPMailer{
		dialer:   gomail.NewDialer(host, port, user, pass),
		from:     from,
		disabled: disabled,
		db:       db,
		logger:   logger,
	}
}

func (m *SMTPMailer) Send(to, subject, templateName string, data map[string]interface{}) error {
	body, err := renderTemplate(templateName, data)
	if err != nil {
		m.record(to, subject, templateName, data, err)
		return err
	}

	if m.disabled {
		m.logger.Info("mock email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.String("template", templateName))
		m.record(to, subject, templateName, data, nil)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("LevelUp <%s>", m.from))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	err = m.dialer.DialAndSend(msg)
	m.record(to, subject, templateName, data, err)
	return err
}

// record пишет попытку в email_logs. Ошибки глотаем: журнал писем
// не важнее самого письма.
func (m *SMTPMailer) record(to, subject, templateName string, data map[string]interface{}, sendErr error) {
	if m.db == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("{}")
	}

	entry := models.EmailLog{
		Recipient: to,
		Subject:   subject,
		Template:  templateName,
		Data:      datatypes.JSON(payload),
		Delivered: sendErr == nil,
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}

	if err := m.db.Create(&entry).Error; err != nil {
		m.logger.Warn("failed to record email log", zap.Error(err))
	}
}

var templates = map[string]*template.Template{
	"welcome": template.Must(template.New("welcome").Parse(`
<h1>Bienvenue sur LevelUp, {{.name}} !</h1>
<p>Votre compte est prêt. Bonne formation !</p>`)),

	"purchase-confirmation": template.Must(template.New("purchase-confirmation").Parse(`
<h1>Merci pour votre commande n°{{.order_id}}</h1>
<ul>
{{range .items}}<li>{{.Title}} : {{.Price}} €</li>{{end}}
</ul>
<p>Total : {{.total}} €</p>`)),
}

func renderTemplate(name string, data map[string]interface{}) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
