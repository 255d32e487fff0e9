package console

import (
	"context"
	"errors"

	"github.com/nxadm/tail"
)

func NewLocal(filePath string) *Local {
	return &Local{filePath: filePath}
}

// Local reads a complete server log file from the start, line by line. The file is read once, it is
// not followed for new lines.
type Local struct {
	tail     *tail.Tail
	filePath string
}

func (l *Local) Open(_ context.Context) error {
	if l.tail != nil {
		return nil
	}

	tailFile, errTail := tail.TailFile(l.filePath, tail.Config{
		// Stop at EOF, the log is processed as a finished file.
		Follow:    false,
		ReOpen:    false,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if errTail != nil {
		return errors.Join(errTail, ErrOpen)
	}

	l.tail = tailFile

	return nil
}

// Start sends every line to the receiver in file order, returning once the end of the file is reached.
func (l *Local) Start(ctx context.Context, receiver Receiver) error {
	if l.tail == nil {
		return ErrRead
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-l.tail.Lines:
			if !ok {
				return nil
			}

			if line.Err != nil {
				return errors.Join(line.Err, ErrRead)
			}

			if err := receiver.Send(line.Text); err != nil {
				return err
			}
		}
	}
}

func (l *Local) Close(_ context.Context) error {
	if l.tail == nil {
		return nil
	}

	defer l.tail.Cleanup()

	if err := l.tail.Stop(); err != nil {
		return errors.Join(err, ErrClose)
	}

	l.tail = nil

	return nil
}
