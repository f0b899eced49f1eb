package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/squarefactory/slurm-api/logger"
)

var (
	// ErrNoAuth is returned by Connect when the configuration carries neither
	// a key file nor a password.
	ErrNoAuth = errors.New("no authentication method configured: set a key file or a password")

	// ErrNotConnected is returned by Exec when no session has been established.
	ErrNotConnected = errors.New("not connected: call Connect first")
)

// dialFunc matches ssh.Dial, swapped out in tests.
type dialFunc func(network, addr string, config *ssh.ClientConfig) (*ssh.Client, error)

// SSH runs commands on the cluster head node over a single SSH connection. At
// most one connection is live at a time: Connect is a no-op when already
// connected, and Disconnect may be called at any point, connected or not.
type SSH struct {
	cfg    Config
	dial   dialFunc
	client *ssh.Client
	log    *logger.Logger
}

func NewSSH(cfg Config) *SSH {
	return &SSH{
		cfg:  cfg,
		dial: ssh.Dial,
		log:  logger.Get(),
	}
}

// Connect establishes the SSH connection. It fails with ErrNoAuth before any
// network I/O when no authentication method is configured, and leaves the
// session unset on any failure.
func (s *SSH) Connect() error {
	if s.client != nil {
		return nil
	}

	auth, err := s.authMethods()
	if err != nil {
		return err
	}

	config := &ssh.ClientConfig{
		User: s.cfg.User,
		Auth: auth,
		// The original deployment auto-accepts host keys.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
		Timeout:         s.cfg.Timeout,
	}

	client, err := s.dial("tcp", s.cfg.Addr(), config)
	if err != nil {
		s.log.Error("ssh connect failed",
			logger.String("addr", s.cfg.Addr()),
			logger.Error(err),
		)
		return fmt.Errorf("connect %s: %w", s.cfg.Addr(), err)
	}

	s.client = client
	s.log.Info("connected to cluster",
		logger.String("addr", s.cfg.Addr()),
		logger.String("user", s.cfg.User),
	)
	return nil
}

// authMethods builds the auth method list. A key file takes precedence over a
// password when both are supplied.
func (s *SSH) authMethods() ([]ssh.AuthMethod, error) {
	if s.cfg.KeyFile != "" {
		key, err := os.ReadFile(s.cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}

	if s.cfg.Password != "" {
		return []ssh.AuthMethod{ssh.Password(s.cfg.Password)}, nil
	}

	return nil, ErrNoAuth
}

// Connected reports whether a session is currently established.
func (s *SSH) Connected() bool {
	return s.client != nil
}

// Exec runs a command on the established session and returns its trimmed
// stdout, trimmed stderr and exit code. A nonzero remote exit status is not an
// error; an error indicates a transport failure or a timeout. The command is
// bounded by the configured timeout, or by ctx when its deadline is sooner.
func (s *SSH) Exec(ctx context.Context, cmd string) (string, string, int, error) {
	if s.client == nil {
		return "", "", -1, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	s.log.Debug("executing command", logger.String("command", cmd))

	type result struct {
		stdout   string
		stderr   string
		exitCode int
		err      error
	}

	ch := make(chan result, 1)
	go func() {
		session, err := s.client.NewSession()
		if err != nil {
			ch <- result{exitCode: -1, err: fmt.Errorf("new session: %w", err)}
			return
		}
		defer session.Close()

		var stdout, stderr bytes.Buffer
		session.Stdout = &stdout
		session.Stderr = &stderr

		exit := 0
		err = session.Run(cmd)
		if err != nil {
			var ee *ssh.ExitError
			if errors.As(err, &ee) {
				exit = ee.ExitStatus()
				err = nil
			} else {
				exit = -1
			}
		}

		ch <- result{
			stdout:   strings.TrimSpace(stdout.String()),
			stderr:   strings.TrimSpace(stderr.String()),
			exitCode: exit,
			err:      err,
		}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			s.log.Error("command failed",
				logger.String("command", cmd),
				logger.Error(r.err),
			)
			return r.stdout, r.stderr, r.exitCode, r.err
		}
		s.log.Debug("command finished",
			logger.String("command", cmd),
			logger.Int("exit_code", r.exitCode),
		)
		if r.stderr != "" {
			s.log.Warn("command stderr",
				logger.String("command", cmd),
				logger.String("stderr", r.stderr),
			)
		}
		return r.stdout, r.stderr, r.exitCode, nil
	case <-ctx.Done():
		return "", "", -1, fmt.Errorf("command %q: %w", cmd, ctx.Err())
	}
}

// Disconnect closes the connection. Safe to call when never connected or
// already disconnected.
func (s *SSH) Disconnect() error {
	if s.client == nil {
		return nil
	}

	err := s.client.Close()
	s.client = nil
	s.log.Info("disconnected from cluster", logger.String("addr", s.cfg.Addr()))
	return err
}
