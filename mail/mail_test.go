package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testMail() lmsAuth.ActivationMail {
	return lmsAuth.ActivationMail{Name: "Alice <b>", Email: "alice@example.com", Code: "4821", ExpiresIn: 5 * time.Minute}
}

func TestRenderActivation(t *testing.T) {
	body, err := RenderActivation(testMail(), fixedNow)
	require.NoError(t, err)
	assert.Contains(t, body, "4821")
	assert.Contains(t, body, "5 minutes")
	assert.Contains(t, body, "2026")
	assert.Contains(t, body, "Alice &lt;b&gt;")
	assert.NotContains(t, body, "Alice <b>")
}

func TestSMTPMailerSends(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "lms@example.com"}, nil)
	m.now = func() time.Time { return fixedNow }

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg, gotAuth = addr, to, string(msg), a
		assert.Equal(t, "lms@example.com", from)
		return nil
	}

	require.NoError(t, m.SendActivation(context.Background(), testMail()))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.NotNil(t, gotAuth)
	assert.Contains(t, gotMsg, "Subject: "+ActivationSubject+"\r\n")
	assert.Contains(t, gotMsg, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.True(t, strings.Contains(gotMsg, "\r\n\r\n<!DOCTYPE html>"))
}

func TestSMTPMailerError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25, From: "lms@example.com"}, zap.New(core))
	boom := errors.New("connection refused")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := m.SendActivation(context.Background(), testMail())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, logs.FilterMessage("activation mail failed").Len())
}

func TestSMTPMailerCanceledContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25}, nil)
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendActivation(ctx, testMail()), context.Canceled)
}

func TestKafkaMailerPublishesEvent(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev ActivationEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.Type != ActivationEventType || ev.Code != "4821" || ev.Email != "alice@example.com" {
			return errors.New("unexpected event payload")
		}
		if !ev.ExpiresAt.Equal(fixedNow.Add(5 * time.Minute)) {
			return errors.New("unexpected expiry")
		}
		return nil
	})

	m := NewKafkaMailer(producer, "lms.activation", nil)
	m.now = func() time.Time { return fixedNow }
	require.NoError(t, m.SendActivation(context.Background(), testMail()))
	require.NoError(t, m.Close())
}

func TestKafkaMailerSendFailure(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	m := NewKafkaMailer(producer, "lms.activation", nil)
	err := m.SendActivation(context.Background(), testMail())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, m.Close())
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.SendActivation(context.Background(), testMail()))
	entries := logs.FilterMessage("activation code").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "4821", entries[0].ContextMap()["code"])
}
