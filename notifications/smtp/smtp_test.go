package smtp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/bloodline/backend/notifications"
	"github.com/bloodline/backend/test"
)

const (
	testFromName    = "Bloodline"
	testFromAddress = "noreply@bloodline.lk"
	testToAddress   = "donor@example.com"
)

var testConfig *Config

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := test.StartMailService(ctx)
	if err != nil {
		panic(err)
	}
	defer func() { _ = container.Terminate(ctx) }()
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	smtpPort, err := container.MappedPort(ctx, test.MailSMTPPort)
	if err != nil {
		panic(err)
	}
	apiPort, err := container.MappedPort(ctx, test.MailAPIPort)
	if err != nil {
		panic(err)
	}
	testConfig = &Config{
		FromName:    testFromName,
		FromAddress: testFromAddress,
		SMTPServer:  host,
		SMTPPort:    smtpPort.Int(),
		TestAPIPort: apiPort.Int(),
	}
	os.Exit(m.Run())
}

// fetchLastMessage reads the latest message of the recipient from the
// MailHog API.
func fetchLastMessage(to string) (string, error) {
	searchURL := fmt.Sprintf("http://%s:%d/api/v2/search?kind=to&query=%s",
		testConfig.SMTPServer, testConfig.TestAPIPort, to)
	resp, err := http.Get(searchURL)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	var result struct {
		Items []struct {
			Content struct {
				Body string `json:"Body"`
			} `json:"Content"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Items) == 0 {
		return "", fmt.Errorf("no messages for %s", to)
	}
	return result.Items[0].Content.Body, nil
}

func TestNew(t *testing.T) {
	c := qt.New(t)
	// invalid configuration type
	c.Assert(new(Email).New("not a config"), qt.IsNotNil)
	// unparseable sender address
	c.Assert(new(Email).New(&Config{FromAddress: "not-an-email"}), qt.IsNotNil)
	// valid configuration
	c.Assert(new(Email).New(testConfig), qt.IsNil)
}

func TestSendNotification(t *testing.T) {
	c := qt.New(t)
	mailService := new(Email)
	c.Assert(mailService.New(testConfig), qt.IsNil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.Assert(mailService.SendNotification(ctx, &notifications.Notification{
		ToName:    "Test Donor",
		ToAddress: testToAddress,
		Subject:   "Your donation appointment",
		PlainBody: "Your appointment has been approved.",
		Body:      "<p>Your appointment has been <b>approved</b>.</p>",
	}), qt.IsNil)

	body, err := fetchLastMessage(testToAddress)
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(body, "approved"), qt.IsTrue)

	// a malformed recipient fails before reaching the server
	c.Assert(mailService.SendNotification(ctx, &notifications.Notification{
		ToAddress: "not-an-email",
		Subject:   "never sent",
	}), qt.IsNotNil)
}
