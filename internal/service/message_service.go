package service

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Message keys used by the appointment usecase.
const (
	MsgInvalidPagination                = "InvalidPagination"
	MsgInvalidDate                      = "InvalidDate"
	MsgInvalidAppointment               = "InvalidAppointment"
	MsgInvalidPatientID                 = "InvalidPatientId"
	MsgInvalidDoctorID                  = "InvalidDoctorId"
	MsgInvalidStatus                    = "InvalidStatus"
	MsgInvalidStatusTransition          = "InvalidStatusTransition"
	MsgCompletedAppointmentCancellation = "CompletedAppointmentCancellation"
	MsgTwentyFourHoursPolicy            = "TwentyFourHoursPolicy"

	UnknownMessage = "Unknown error occurred."
)

//go:embed messages/appointment_messages.yaml
var defaultCatalog []byte

type MessageService interface {
	GetMessage(key string) string
}

type messageService struct {
	messages map[string]string
}

type messageCatalog struct {
	Messages map[string]string `yaml:"messages"`
}

// NewMessageService loads the catalog at path. An empty path uses the embedded catalog.
// Keys missing from a custom file fall back to the embedded text.
func NewMessageService(log *logrus.Logger, path string) (MessageService, error) {
	messages, err := parseCatalog(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("parse embedded messages: %w", err)
	}

	if path == "" {
		return &messageService{messages: messages}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read messages file %s: %w", path, err)
	}
	custom, err := parseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("parse messages file %s: %w", path, err)
	}
	for key, text := range custom {
		messages[key] = text
	}

	log.Infof("Loaded %d messages from %s", len(custom), path)
	return &messageService{messages: messages}, nil
}

// NewStaticMessageService serves a fixed map. Used by tests.
func NewStaticMessageService(messages map[string]string) MessageService {
	return &messageService{messages: messages}
}

func parseCatalog(raw []byte) (map[string]string, error) {
	var catalog messageCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, err
	}
	if catalog.Messages == nil {
		catalog.Messages = make(map[string]string)
	}
	return catalog.Messages, nil
}

func (s *messageService) GetMessage(key string) string {
	if msg, ok := s.messages[key]; ok {
		return msg
	}
	return UnknownMessage
}
