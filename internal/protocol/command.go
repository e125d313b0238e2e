// internal/protocol/command.go
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stimjim-service/internal/model"
)

// TriggerCommandLetters maps a trigger index to the letter of its manual
// fire command
var TriggerCommandLetters = [model.NumTriggers]string{"T", "U"}

// ErrEmptyCommand is returned for raw commands with no content
var ErrEmptyCommand = errors.New("empty command")

// CommandKind classifies a wire line
type CommandKind int

const (
	CommandRaw CommandKind = iota
	CommandTrain
	CommandTriggerBinding
	CommandFire
	CommandCancel
)

func (k CommandKind) String() string {
	switch k {
	case CommandTrain:
		return "train"
	case CommandTriggerBinding:
		return "trigger_binding"
	case CommandFire:
		return "fire"
	case CommandCancel:
		return "cancel"
	default:
		return "raw"
	}
}

// Command is a decoded wire line
type Command struct {
	Kind      CommandKind
	Line      string
	Train     *model.PulseTrain
	Trigger   model.Trigger
	TriggerID int
	TrainID   int
}

// TriggerCommand builds the manual fire command that starts train trainID
// through trigger triggerID
func TriggerCommand(triggerID, trainID int) (string, error) {
	if triggerID < 0 || triggerID >= model.NumTriggers {
		return "", fmt.Errorf("trigger %d: %w", triggerID, model.ErrIndexOutOfRange)
	}
	if trainID < 0 || trainID >= model.MaxPulseTrains {
		return "", fmt.Errorf("pulse train %d: %w", trainID, model.ErrIndexOutOfRange)
	}
	return fmt.Sprintf("%s%d", TriggerCommandLetters[triggerID], trainID), nil
}

// CancelCommand builds the command that stops whatever trigger triggerID
// is currently running
func CancelCommand(triggerID int) (string, error) {
	if triggerID < 0 || triggerID >= model.NumTriggers {
		return "", fmt.Errorf("trigger %d: %w", triggerID, model.ErrIndexOutOfRange)
	}
	return fmt.Sprintf("%s%d", TriggerCommandLetters[triggerID], model.CancelTarget), nil
}

// RawCommand prepares operator-typed text for the wire
func RawCommand(text string) (string, error) {
	trimmed := strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(trimmed) == "" {
		return "", ErrEmptyCommand
	}
	return Terminate(trimmed), nil
}

// Terminate appends a newline unless the command already ends with one
func Terminate(command string) string {
	if strings.HasSuffix(command, "\n") {
		return command
	}
	return command + "\n"
}

// JoinCommands joins commands into one newline-separated block
func JoinCommands(commands ...string) string {
	trimmed := make([]string, 0, len(commands))
	for _, c := range commands {
		trimmed = append(trimmed, strings.TrimRight(c, "\r\n"))
	}
	return strings.Join(trimmed, "\n")
}

// SplitLines splits a block of commands into non-empty lines
func SplitLines(data string) []string {
	var lines []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ParseCommand decodes one wire line. Lines that do not match a structured
// command come back as CommandRaw; structured lines with bad fields fail.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	cmd := Command{Kind: CommandRaw, Line: line}
	if line == "" {
		return cmd, ErrEmptyCommand
	}

	switch line[0] {
	case 'S':
		return parseTrainCommand(line)
	case 'R':
		return parseBindingCommand(line)
	}

	for triggerID, letter := range TriggerCommandLetters {
		if !strings.HasPrefix(line, letter) {
			continue
		}
		target, err := strconv.Atoi(line[len(letter):])
		if err != nil {
			return cmd, nil
		}
		cmd.TriggerID = triggerID
		if target == model.CancelTarget {
			cmd.Kind = CommandCancel
			return cmd, nil
		}
		if target < 0 || target >= model.MaxPulseTrains {
			return cmd, fmt.Errorf("pulse train %d: %w", target, model.ErrIndexOutOfRange)
		}
		cmd.Kind = CommandFire
		cmd.TrainID = target
		return cmd, nil
	}

	return cmd, nil
}

func parseTrainCommand(line string) (Command, error) {
	segments := strings.Split(line[1:], ";")

	header, err := parseInts(segments[0], 5)
	if err != nil {
		return Command{}, fmt.Errorf("train header %q: %w", segments[0], err)
	}

	rec := model.PulseTrainRecord{
		TrainID:         header[0],
		ChannelModes:    []int{header[1], header[2]},
		TrainPeriodUS:   header[3],
		TrainDurationUS: header[4],
		Phases:          make([]model.PhaseRecord, 0, len(segments)-1),
	}
	for _, segment := range segments[1:] {
		stage, err := parseInts(segment, 3)
		if err != nil {
			return Command{}, fmt.Errorf("stage %q: %w", segment, err)
		}
		rec.Phases = append(rec.Phases, model.PhaseRecord{
			Ch0Amp:   float64(stage[0]),
			Ch1Amp:   float64(stage[1]),
			Duration: float64(stage[2]),
		})
	}

	train, err := model.DecodePulseTrain(rec)
	if err != nil {
		return Command{}, err
	}

	return Command{Kind: CommandTrain, Line: line, Train: train, TrainID: train.ID()}, nil
}

func parseBindingCommand(line string) (Command, error) {
	fields, err := parseInts(line[1:], 3)
	if err != nil {
		return Command{}, fmt.Errorf("trigger binding %q: %w", line, err)
	}

	direction, err := model.ParseTriggerDirection(fields[2])
	if err != nil {
		return Command{}, err
	}

	trig := model.Trigger{ID: fields[0], TargetTrain: fields[1], Direction: direction}
	if err := trig.Validate(); err != nil {
		return Command{}, err
	}

	return Command{
		Kind:      CommandTriggerBinding,
		Line:      line,
		Trigger:   trig,
		TriggerID: trig.ID,
		TrainID:   trig.TargetTrain,
	}, nil
}

func parseInts(s string, want int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", model.ErrMalformedRecord, want, len(parts))
	}
	out := make([]int, want)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedRecord, err)
		}
		out[i] = v
	}
	return out, nil
}
