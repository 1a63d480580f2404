package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHConfig holds connection settings for a remote host.
type SSHConfig struct {
	Host    string
	Port    int
	User    string
	KeyPath string
}

// SSH runs commands on a remote host, one session per command.
type SSH struct {
	addr    string
	user    string
	signer  ssh.Signer // parsed once at startup
	timeout time.Duration
	logger  *slog.Logger
}

// NewSSH creates a remote runner. The private key is read and parsed here so
// a bad key fails at startup rather than on every collection.
func NewSSH(cfg SSHConfig, timeout time.Duration, logger *slog.Logger) (*SSH, error) {
	keyBytes, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading SSH key %s: %w", cfg.KeyPath, err)
	}
	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing SSH key %s: %w", cfg.KeyPath, err)
	}
	return newSSHWithSigner(cfg, signer, timeout, logger), nil
}

func newSSHWithSigner(cfg SSHConfig, signer ssh.Signer, timeout time.Duration, logger *slog.Logger) *SSH {
	if logger == nil {
		logger = slog.Default()
	}
	port := cfg.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	return &SSH{
		addr:    addr,
		user:    cfg.User,
		signer:  signer,
		timeout: timeout,
		logger:  logger.With("component", "runner", "host", addr),
	}
}

// Run executes command on the remote host.
func (s *SSH) Run(ctx context.Context, command string) Result {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.run(ctx, command)
	if err != nil {
		s.logger.Error("host failed to run command", "command", command, "error", err)
		return Result{Output: FailedOutput, ExitCode: -1}
	}
	logOutcome(s.logger, command, res, time.Since(start))
	return res
}

func (s *SSH) run(ctx context.Context, command string) (Result, error) {
	config := &ssh.ClientConfig{
		User:            s.user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(s.signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // monitored hosts live on a trusted LAN
		Timeout:         10 * time.Second,
	}

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return Result{}, fmt.Errorf("connecting to %s: %w", s.addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, s.addr, config)
	if err != nil {
		conn.Close()
		return Result{}, fmt.Errorf("SSH handshake with %s: %w", s.addr, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	// Closing the client unblocks the session when the context expires.
	stop := context.AfterFunc(ctx, func() { client.Close() })
	defer stop()

	session, err := client.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("creating SSH session: %w", err)
	}
	defer session.Close()

	out, err := session.CombinedOutput(command)
	if ctx.Err() != nil {
		return Result{}, fmt.Errorf("running %q: %w", command, ctx.Err())
	}
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return Result{Output: string(out), ExitCode: exitErr.ExitStatus()}, nil
		}
		return Result{}, fmt.Errorf("running %q: %w", command, err)
	}
	return Result{Output: string(out)}, nil
}
