// internal/service/events.go
package service

// EventListener receives controller events. Implementations must not block;
// they are called with the controller lock held.
type EventListener interface {
	OnSerialOutput(text string)
	OnCommandSent(command string)
	OnConnectionChanged(connected bool, port string, err error)
	OnProgramChanged(mode string)
}

type listeners []EventListener

func (l listeners) serialOutput(text string) {
	for _, listener := range l {
		listener.OnSerialOutput(text)
	}
}

func (l listeners) commandSent(command string) {
	for _, listener := range l {
		listener.OnCommandSent(command)
	}
}

func (l listeners) connectionChanged(connected bool, port string, err error) {
	for _, listener := range l {
		listener.OnConnectionChanged(connected, port, err)
	}
}

func (l listeners) programChanged(mode string) {
	for _, listener := range l {
		listener.OnProgramChanged(mode)
	}
}
