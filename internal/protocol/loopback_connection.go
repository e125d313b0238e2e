// internal/protocol/loopback_connection.go
package protocol

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"stimjim-service/internal/model"
)

// LoopbackConnection implements Transport with an in-memory device. It
// decodes every line it receives, keeps a mirror of the programmed state
// and echoes each line back the way the firmware does.
type LoopbackConnection struct {
	logger  *zap.Logger
	mutex   sync.Mutex
	isOpen  bool
	stats   ProtocolStats
	inbound []byte
	partial string
	lines   []string
	mirror  *model.StimulationProgram
	fired   []Command
	failErr error
}

// NewLoopbackConnection creates a new loopback connection
func NewLoopbackConnection(logger *zap.Logger) *LoopbackConnection {
	return &LoopbackConnection{
		logger: logger.With(zap.String("protocol", "loopback")),
		mirror: model.NewStimulationProgram(),
	}
}

// Open opens the loopback connection
func (lc *LoopbackConnection) Open(ctx context.Context) error {
	lc.mutex.Lock()
	defer lc.mutex.Unlock()

	lc.isOpen = true
	lc.stats.IsConnected = true
	lc.stats.LastActivity = time.Now()
	return nil
}

// Close closes the loopback connection
func (lc *LoopbackConnection) Close() error {
	lc.mutex.Lock()
	defer lc.mutex.Unlock()

	lc.isOpen = false
	lc.stats.IsConnected = false
	return nil
}

// IsOpen returns whether the connection is open
func (lc *LoopbackConnection) IsOpen() bool {
	lc.mutex.Lock()
	defer lc.mutex.Unlock()
	return lc.isOpen
}

// Write feeds data to the simulated device
func (lc *LoopbackConnection) Write(ctx context.Context, data []byte) error {
	lc.mutex.Lock()
	defer lc.mutex.Unlock()

	if !lc.isOpen {
		return fmt.Errorf("loopback write: %w", ErrNotOpen)
	}
	if lc.failErr != nil {
		lc.stats.ErrorCount++
		return lc.failErr
	}

	startTime := time.Now()
	buffered := lc.partial + string(data)
	complete := strings.LastIndex(buffered, "\n")
	if complete < 0 {
		lc.partial = buffered
	} else {
		lc.partial = buffered[complete+1:]
		for _, line := range strings.Split(buffered[:complete], "\n") {
			lc.handleLine(strings.TrimRight(line, "\r"))
		}
	}

	lc.stats.recordWrite(len(data), time.Since(startTime))
	return nil
}

func (lc *LoopbackConnection) handleLine(line string) {
	lc.lines = append(lc.lines, line)

	cmd, err := ParseCommand(line)
	if err == nil {
		err = lc.apply(cmd)
	}
	if err != nil {
		lc.logger.Debug("Loopback rejected command", zap.String("line", line), zap.Error(err))
		lc.inbound = append(lc.inbound, fmt.Sprintf("error: %v\r\n", err)...)
		return
	}

	lc.inbound = append(lc.inbound, line+"\r\n"...)
}

// apply updates the simulated device state. Trains outside their output
// limits are refused like the device would.
func (lc *LoopbackConnection) apply(cmd Command) error {
	switch cmd.Kind {
	case CommandTrain:
		if err := cmd.Train.Validate(); err != nil {
			return err
		}
		return lc.mirror.ReplaceTrain(cmd.Train)
	case CommandTriggerBinding:
		return lc.mirror.SetTrigger(cmd.Trigger)
	case CommandFire, CommandCancel:
		lc.fired = append(lc.fired, cmd)
	}
	return nil
}

// ReadAvailable returns everything the simulated device has emitted
func (lc *LoopbackConnection) ReadAvailable(ctx context.Context) ([]byte, error) {
	lc.mutex.Lock()
	defer lc.mutex.Unlock()

	if !lc.isOpen {
		return nil, fmt.Errorf("loopback read: %w", ErrNotOpen)
	}

	out := lc.inbound
	lc.inbound = nil
	lc.stats.recordRead(len(out))
	return out, nil
}

// GetProtocolType returns the protocol type
func (lc *LoopbackConnection) GetProtocolType() TransportType {
	return TransportLoopback
}

// GetStats returns a snapshot of the connection statistics
func (lc *LoopbackConnection) GetStats() ProtocolStats {
	lc.mutex.Lock()
	defer lc.mutex.Unlock()
	return lc.stats
}

// Inject queues unsolicited device output
func (lc *LoopbackConnection) Inject(data string) {
	lc.mutex.Lock()
	defer lc.mutex.Unlock()
	lc.inbound = append(lc.inbound, data...)
}

// FailWrites makes every following write return err; nil restores writes
func (lc *LoopbackConnection) FailWrites(err error) {
	lc.mutex.Lock()
	defer lc.mutex.Unlock()
	lc.failErr = err
}

// Lines returns every complete line received so far
func (lc *LoopbackConnection) Lines() []string {
	lc.mutex.Lock()
	defer lc.mutex.Unlock()
	out := make([]string, len(lc.lines))
	copy(out, lc.lines)
	return out
}

// Fired returns the manual fire and cancel commands received so far
func (lc *LoopbackConnection) Fired() []Command {
	lc.mutex.Lock()
	defer lc.mutex.Unlock()
	out := make([]Command, len(lc.fired))
	copy(out, lc.fired)
	return out
}

// Mirror returns a copy of the state the simulated device holds
func (lc *LoopbackConnection) Mirror() *model.StimulationProgram {
	lc.mutex.Lock()
	defer lc.mutex.Unlock()
	return lc.mirror.Clone()
}
