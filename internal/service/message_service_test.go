package service

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestMessageService_EmbeddedCatalog(t *testing.T) {
	svc, err := NewMessageService(quietLogger(), "")
	require.NoError(t, err)

	keys := []string{
		MsgInvalidPagination,
		MsgInvalidDate,
		MsgInvalidAppointment,
		MsgInvalidPatientID,
		MsgInvalidDoctorID,
		MsgInvalidStatus,
		MsgInvalidStatusTransition,
		MsgCompletedAppointmentCancellation,
		MsgTwentyFourHoursPolicy,
	}
	for _, key := range keys {
		msg := svc.GetMessage(key)
		assert.NotEmpty(t, msg, key)
		assert.NotEqual(t, UnknownMessage, msg, key)
	}
}

func TestMessageService_UnknownKey(t *testing.T) {
	svc, err := NewMessageService(quietLogger(), "")
	require.NoError(t, err)

	assert.Equal(t, "Unknown error occurred.", svc.GetMessage("NoSuchKey"))
}

func TestMessageService_FileOverridesEmbedded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yaml")
	content := "messages:\n  InvalidDate: \"Pick a date within the next month.\"\n  Custom: \"custom text\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	svc, err := NewMessageService(quietLogger(), path)
	require.NoError(t, err)

	assert.Equal(t, "Pick a date within the next month.", svc.GetMessage(MsgInvalidDate))
	assert.Equal(t, "custom text", svc.GetMessage("Custom"))
	assert.NotEqual(t, UnknownMessage, svc.GetMessage(MsgTwentyFourHoursPolicy))
}

func TestMessageService_MissingFile(t *testing.T) {
	_, err := NewMessageService(quietLogger(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestMessageService_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("messages: [unterminated"), 0o600))

	_, err := NewMessageService(quietLogger(), path)
	assert.Error(t, err)
}
