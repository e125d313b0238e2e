// internal/service/stimulator_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"stimjim-service/internal/config"
	"stimjim-service/internal/model"
	"stimjim-service/internal/protocol"
	"stimjim-service/internal/utils"
)

// DefaultHistorySize bounds the raw command history
const DefaultHistorySize = 20

// StimulatorService is the session controller. It owns one program per mode,
// binds them to a single transport and serialises every transport access.
type StimulatorService struct {
	mu sync.Mutex

	transport    protocol.Transport
	port         string
	deviceLogger *utils.DeviceLogger

	programs   map[model.ProgramMode]*model.StimulationProgram
	currentTab model.ProgramMode

	history     []string
	historySize int

	serialLog io.Writer
	listeners listeners

	readInterval time.Duration
	config       *config.DeviceConfig
	baseLogger   *zap.Logger
	logger       *utils.ServiceLogger
}

// ConnectionStatus describes the current link
type ConnectionStatus struct {
	Connected bool                   `json:"connected"`
	Transport protocol.TransportType `json:"transport,omitempty"`
	Port      string                 `json:"port,omitempty"`
	Stats     *protocol.ProtocolStats `json:"stats,omitempty"`
}

// NewStimulatorService creates a controller with default programs and no link
func NewStimulatorService(cfg *config.DeviceConfig, logger *zap.Logger) *StimulatorService {
	s := &StimulatorService{
		programs:     make(map[model.ProgramMode]*model.StimulationProgram),
		currentTab:   model.ProgramModeSimple,
		historySize:  DefaultHistorySize,
		readInterval: 500 * time.Millisecond,
		config:       cfg,
		baseLogger:   logger,
		logger:       utils.NewServiceLogger(logger, "stimulator-service"),
	}

	for _, mode := range model.ProgramModes() {
		s.programs[mode] = model.NewStimulationProgram()
	}

	if cfg != nil {
		if cfg.HistorySize > 0 {
			s.historySize = cfg.HistorySize
		}
		if cfg.ReadInterval > 0 {
			s.readInterval = cfg.ReadInterval
		}
	}

	return s
}

// AddListener registers an event listener
func (s *StimulatorService) AddListener(listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// SetSerialLog sets the writer that receives device output, nil to disable
func (s *StimulatorService) SetSerialLog(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serialLog = w
}

// Connect creates a transport from settings and opens it, replacing any
// current link
func (s *StimulatorService) Connect(ctx context.Context, transportType protocol.TransportType, settings map[string]interface{}) error {
	transport, err := protocol.CreateTransport(transportType, settings, s.baseLogger)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	port, _ := settings["port"].(string)
	if host, ok := settings["host"].(string); ok && port == "" {
		port = host
	}
	if port == "" {
		port = string(transportType)
	}

	return s.Attach(ctx, transport, port)
}

// Attach opens an existing transport and binds it to the controller. The
// current link is closed only once the new one is open.
func (s *StimulatorService) Attach(ctx context.Context, transport protocol.Transport, port string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deviceLogger := utils.NewDeviceLogger(s.baseLogger, string(transport.GetProtocolType()), port)
	if err := transport.Open(ctx); err != nil {
		deviceLogger.LogConnection("open", false, err)
		return fmt.Errorf("failed to open %s: %w", port, err)
	}

	if s.transport != transport {
		if err := s.closeLocked("replaced"); err != nil {
			s.logger.Warn("Failed to close previous link", zap.Error(err))
		}
	}

	s.transport = transport
	s.port = port
	s.deviceLogger = deviceLogger

	deviceLogger.LogConnection("open", true, nil)
	s.listeners.connectionChanged(true, port, nil)
	return nil
}

// Disconnect closes the current link
func (s *StimulatorService) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport == nil {
		return protocol.ErrNotOpen
	}
	return s.closeLocked("requested")
}

func (s *StimulatorService) closeLocked(reason string) error {
	if s.transport == nil {
		return nil
	}

	err := s.transport.Close()
	s.deviceLogger.LogConnection("close", err == nil, err)
	s.deviceLogger.Debug("Link closed", zap.String("reason", reason))
	s.listeners.connectionChanged(false, s.port, err)

	s.transport = nil
	s.deviceLogger = nil
	s.port = ""
	return err
}

// Status returns the current link state
func (s *StimulatorService) Status() ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport == nil {
		return ConnectionStatus{}
	}

	stats := s.transport.GetStats()
	return ConnectionStatus{
		Connected: s.transport.IsOpen(),
		Transport: s.transport.GetProtocolType(),
		Port:      s.port,
		Stats:     &stats,
	}
}

// Send writes one command, appending the newline when missing. There is no
// retry and no acknowledgement; transport failures are returned.
func (s *StimulatorService) Send(ctx context.Context, command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendLocked(ctx, command)
}

func (s *StimulatorService) sendLocked(ctx context.Context, command string) error {
	if s.transport == nil || !s.transport.IsOpen() {
		return fmt.Errorf("send %q: %w", strings.TrimRight(command, "\n"), protocol.ErrNotOpen)
	}

	line := protocol.Terminate(command)
	start := time.Now()
	err := s.transport.Write(ctx, []byte(line))
	s.deviceLogger.LogCommand(strings.TrimRight(line, "\n"), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}

	s.listeners.commandSent(line)
	return nil
}

// ReadAvailable drains whatever the device has sent, "" when nothing is
// pending
func (s *StimulatorService) ReadAvailable(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(ctx)
}

func (s *StimulatorService) readLocked(ctx context.Context) (string, error) {
	if s.transport == nil || !s.transport.IsOpen() {
		return "", protocol.ErrNotOpen
	}

	data, err := s.transport.ReadAvailable(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read device output: %w", err)
	}
	return string(data), nil
}

// Poll drains device output once. Whitespace-only output is discarded; the
// rest goes to the serial log and to listeners.
func (s *StimulatorService) Poll(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.readLocked(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	s.deviceLogger.LogOutput(text)
	if s.serialLog != nil {
		if _, err := io.WriteString(s.serialLog, text); err != nil {
			s.logger.Warn("Failed to append serial log", zap.Error(err))
		}
	}
	s.listeners.serialOutput(text)

	return text, nil
}

// Run polls the device every read interval until ctx is cancelled
func (s *StimulatorService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.readInterval)
	defer ticker.Stop()

	s.logger.Info("Serial poll loop started", zap.Duration("interval", s.readInterval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Serial poll loop stopped")
			return
		case <-ticker.C:
			if _, err := s.Poll(ctx); err != nil && !errors.Is(err, protocol.ErrNotOpen) {
				s.logger.Error("Serial poll failed", zap.Error(err))
			}
		}
	}
}

// Close stops using the transport
func (s *StimulatorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked("shutdown")
}

// Program returns a copy of the program of a mode
func (s *StimulatorService) Program(mode model.ProgramMode) (*model.StimulationProgram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	program, err := s.programLocked(mode)
	if err != nil {
		return nil, err
	}
	return program.Clone(), nil
}

func (s *StimulatorService) programLocked(mode model.ProgramMode) (*model.StimulationProgram, error) {
	program, ok := s.programs[mode]
	if !ok {
		return nil, fmt.Errorf("unknown program mode %q", mode)
	}
	return program, nil
}

// Train returns a copy of one train
func (s *StimulatorService) Train(mode model.ProgramMode, id int) (*model.PulseTrain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	program, err := s.programLocked(mode)
	if err != nil {
		return nil, err
	}
	train, err := program.Train(id)
	if err != nil {
		return nil, err
	}
	return train.Clone(), nil
}

// UpdateTrain validates a whole train and installs it at its id. With send
// set the new train is transmitted right away.
func (s *StimulatorService) UpdateTrain(ctx context.Context, mode model.ProgramMode, train *model.PulseTrain, send bool) error {
	if err := train.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	program, err := s.programLocked(mode)
	if err != nil {
		return err
	}
	if err := program.ReplaceTrain(train.Clone()); err != nil {
		return err
	}
	s.listeners.programChanged(string(mode))

	if !send {
		return nil
	}
	return s.sendLocked(ctx, train.Encode())
}

// AddStage appends a stage, the default one when nil, to a train. The train
// is left untouched when the stage would break a limit.
func (s *StimulatorService) AddStage(mode model.ProgramMode, trainID int, stage *model.PulseStage) (*model.PulseTrain, error) {
	return s.editTrain(mode, trainID, func(train *model.PulseTrain) error {
		return train.AddStage(stage)
	})
}

// RemoveStage removes a stage, the last one when no index is given
func (s *StimulatorService) RemoveStage(mode model.ProgramMode, trainID int, index ...int) (*model.PulseTrain, error) {
	return s.editTrain(mode, trainID, func(train *model.PulseTrain) error {
		return train.RemoveStage(index...)
	})
}

func (s *StimulatorService) editTrain(mode model.ProgramMode, trainID int, edit func(*model.PulseTrain) error) (*model.PulseTrain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	program, err := s.programLocked(mode)
	if err != nil {
		return nil, err
	}
	current, err := program.Train(trainID)
	if err != nil {
		return nil, err
	}

	candidate := current.Clone()
	if err := edit(candidate); err != nil {
		return nil, err
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	if err := program.ReplaceTrain(candidate); err != nil {
		return nil, err
	}

	s.listeners.programChanged(string(mode))
	return candidate.Clone(), nil
}

// SendTrain transmits the "S" command of one train. A train outside its
// limits is not written.
func (s *StimulatorService) SendTrain(ctx context.Context, mode model.ProgramMode, trainID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	program, err := s.programLocked(mode)
	if err != nil {
		return err
	}
	train, err := program.Train(trainID)
	if err != nil {
		return err
	}
	if err := train.Validate(); err != nil {
		return err
	}
	return s.sendLocked(ctx, train.Encode())
}

// UpdateTrigger validates and installs one trigger binding
func (s *StimulatorService) UpdateTrigger(ctx context.Context, mode model.ProgramMode, trigger model.Trigger, send bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	program, err := s.programLocked(mode)
	if err != nil {
		return err
	}
	if err := program.SetTrigger(trigger); err != nil {
		return err
	}
	s.listeners.programChanged(string(mode))

	if !send {
		return nil
	}
	return s.sendLocked(ctx, trigger.Encode())
}

// SendTriggers transmits both trigger bindings as one newline-joined block
func (s *StimulatorService) SendTriggers(ctx context.Context, mode model.ProgramMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	program, err := s.programLocked(mode)
	if err != nil {
		return err
	}
	return s.sendLocked(ctx, program.EncodeTriggers())
}

// PushProgram transmits every train that has stages followed by both
// trigger bindings. Nothing is written when any of those trains is outside
// its limits.
func (s *StimulatorService) PushProgram(ctx context.Context, mode model.ProgramMode) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	program, err := s.programLocked(mode)
	if err != nil {
		return 0, err
	}

	var pending []*model.PulseTrain
	for _, train := range program.Trains() {
		if train.StageCount() == 0 {
			continue
		}
		if err := train.Validate(); err != nil {
			return 0, err
		}
		pending = append(pending, train)
	}

	sent := 0
	for _, train := range pending {
		if err := s.sendLocked(ctx, train.Encode()); err != nil {
			return sent, err
		}
		sent++
	}

	if err := s.sendLocked(ctx, program.EncodeTriggers()); err != nil {
		return sent, err
	}
	return sent, nil
}

// FireTrigger manually starts train trainID through trigger triggerID
func (s *StimulatorService) FireTrigger(ctx context.Context, triggerID, trainID int) error {
	command, err := protocol.TriggerCommand(triggerID, trainID)
	if err != nil {
		return err
	}
	return s.Send(ctx, command)
}

// CancelTrigger stops the train running on a trigger. The stored binding is
// not changed.
func (s *StimulatorService) CancelTrigger(ctx context.Context, triggerID int) error {
	command, err := protocol.CancelCommand(triggerID)
	if err != nil {
		return err
	}
	return s.Send(ctx, command)
}

// SendRaw passes operator text through unvalidated and records it in the
// history
func (s *StimulatorService) SendRaw(ctx context.Context, text string) error {
	command, err := protocol.RawCommand(text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sendLocked(ctx, command); err != nil {
		return err
	}
	s.rememberLocked(strings.TrimRight(command, "\n"))
	return nil
}

func (s *StimulatorService) rememberLocked(command string) {
	history := make([]string, 0, s.historySize)
	history = append(history, command)
	for _, previous := range s.history {
		if previous == command {
			continue
		}
		if len(history) == s.historySize {
			break
		}
		history = append(history, previous)
	}
	s.history = history
}

// History returns raw commands, most recent first
func (s *StimulatorService) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// LoadProgram decodes a record into a fresh program and installs it only
// when decoding succeeds
func (s *StimulatorService) LoadProgram(mode model.ProgramMode, record model.ProgramRecord) error {
	program, err := model.DeserializeProgram(record)
	if err != nil {
		return fmt.Errorf("failed to load %s program: %w", mode, err)
	}
	return s.installProgram(mode, program)
}

// LoadProgramJSON is LoadProgram for a JSON encoded record
func (s *StimulatorService) LoadProgramJSON(mode model.ProgramMode, data []byte) error {
	program, err := model.DecodeProgramJSON(data)
	if err != nil {
		return fmt.Errorf("failed to load %s program: %w", mode, err)
	}
	return s.installProgram(mode, program)
}

func (s *StimulatorService) installProgram(mode model.ProgramMode, program *model.StimulationProgram) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.programLocked(mode); err != nil {
		return err
	}
	s.programs[mode] = program
	s.listeners.programChanged(string(mode))

	s.logger.Info("Program loaded", zap.String("mode", string(mode)))
	return nil
}

// CurrentTab returns the mode the operator last worked in
func (s *StimulatorService) CurrentTab() model.ProgramMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTab
}

// SetCurrentTab records the mode the operator works in
func (s *StimulatorService) SetCurrentTab(mode model.ProgramMode) error {
	if _, err := model.ParseProgramMode(string(mode)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTab = mode
	return nil
}
