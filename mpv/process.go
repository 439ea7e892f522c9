package mpv

import (
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	socketWaitRetries = 20
	socketWaitDelay   = 150 * time.Millisecond
	quitGrace         = 3 * time.Second
)

// process is a running mpv instance serving JSON IPC on socket.
type process struct {
	cmd    *exec.Cmd
	socket string
	exited chan struct{}
}

func socketPath(dir string) (string, error) {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	return filepath.Join(dir, fmt.Sprintf("mpv-%d-%x.sock", os.Getpid(), randomBytes)), nil
}

// spawn starts binary in idle mode with the IPC server on socket. Extra args
// are passed before the server argument so they cannot override it.
func spawn(binary, socket string, args []string) (*process, error) {
	argv := append([]string{
		"--idle=yes",
		"--no-terminal",
	}, args...)
	argv = append(argv, "--input-ipc-server="+socket)

	cmd := exec.Command(binary, argv...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	p := &process{cmd: cmd, socket: socket, exited: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.exited)
	}()

	return p, nil
}

// dial waits until the IPC socket accepts a connection and returns it.
func (p *process) dial() (net.Conn, error) {
	var lastErr error
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-p.exited:
			return nil, fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", p.socket)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(socketWaitDelay)
	}
	return nil, fmt.Errorf("socket %s not ready after %d attempts: %w", p.socket, socketWaitRetries, lastErr)
}

// stop waits for the process to exit on its own, then kills its process group.
func (p *process) stop(grace time.Duration) {
	select {
	case <-p.exited:
	case <-time.After(grace):
		_ = killProcess(p.cmd)
		<-p.exited
	}
}
