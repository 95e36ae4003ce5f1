package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"yochan/config"
	"yochan/encoder"
	"yochan/logger"
)

// SFTPBackend stores artifacts below Root on a remote host. One SSH
// connection is held for the lifetime of the backend.
type SFTPBackend struct {
	ssh    *ssh.Client
	client *sftp.Client
	root   string
	addr   string
}

// NewSFTP dials the configured host and opens an SFTP session on it.
func NewSFTP(ctx context.Context, cfg config.SFTPConfig) (*SFTPBackend, error) {
	port := cfg.Port
	if port == "" {
		port = "22"
	}
	if cfg.Host == "" || cfg.User == "" {
		return nil, fmt.Errorf("sftp backend: host and user are required")
	}

	var auths []ssh.AuthMethod
	if cfg.PrivateKey != "" {
		// try to decode as base64, fall back to raw
		keyBytes, err := base64.StdEncoding.DecodeString(cfg.PrivateKey)
		if err != nil {
			keyBytes = []byte(cfg.PrivateKey)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	} else if cfg.Password != "" {
		auths = append(auths, ssh.Password(cfg.Password))
	} else {
		return nil, fmt.Errorf("no auth method provided; set SFTP_PASSWORD or SFTP_PRIVATE_KEY")
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHostsFile != "" {
		cb, err := knownhosts.New(cfg.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("load known hosts: %w", err)
		}
		hostKeyCallback = cb
	} else {
		logger.Warn("SFTP host key checking is disabled; set SFTP_KNOWN_HOSTS_FILE")
	}

	sshConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auths,
		HostKeyCallback: hostKeyCallback,
		Timeout:         10 * time.Second,
	}

	addr := net.JoinHostPort(cfg.Host, port)

	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial tcp %s: %w", addr, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(clientConn, chans, reqs)

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("create sftp client: %w", err)
	}

	root := cfg.Root
	if root == "" {
		root = "uploads"
	}
	if err := mkdirAllSFTP(sftpClient, root); err != nil {
		sftpClient.Close()
		sshClient.Close()
		return nil, fmt.Errorf("ensure remote dir %s: %w", root, err)
	}

	logger.Infof("Connected to SFTP server %s", addr)
	return &SFTPBackend{ssh: sshClient, client: sftpClient, root: root, addr: addr}, nil
}

func (b *SFTPBackend) Name() string { return "sftp" }

func (b *SFTPBackend) path(key string) string { return path.Join(b.root, key) }

func (b *SFTPBackend) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	remotePath := b.path(key)
	dir := path.Dir(remotePath)
	if err := mkdirAllSFTP(b.client, dir); err != nil {
		return fmt.Errorf("ensure remote dir %s: %w", dir, err)
	}

	f, err := b.client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("copy to remote file %s: %w", remotePath, err)
	}

	logger.Debugf("Uploaded '%s' to %s", remotePath, b.addr)
	return nil
}

func (b *SFTPBackend) Open(_ context.Context, key string) (*Object, error) {
	remotePath := b.path(key)
	info, err := b.client.Stat(remotePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFoundFile()
		}
		return nil, fmt.Errorf("stat %s: %w", remotePath, err)
	}
	if info.IsDir() {
		return nil, notFoundFile()
	}
	f, err := b.client.Open(remotePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", remotePath, err)
	}
	return &Object{
		Body:        f,
		Size:        info.Size(),
		ContentType: encoder.ContentType(strings.TrimPrefix(path.Ext(key), ".")),
		ModTime:     info.ModTime(),
	}, nil
}

func (b *SFTPBackend) Delete(_ context.Context, key string) error {
	remotePath := b.path(key)
	info, err := b.client.Stat(remotePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFoundFile()
		}
		return fmt.Errorf("stat %s: %w", remotePath, err)
	}
	if info.IsDir() {
		return notFoundFile()
	}
	if err := b.client.Remove(remotePath); err != nil {
		return fmt.Errorf("remove %s: %w", remotePath, err)
	}
	return nil
}

func (b *SFTPBackend) DeleteNamespace(_ context.Context, purpose string) error {
	if !validNamespace(purpose) {
		return notFoundDirectory()
	}
	dir := b.path(purpose)
	info, err := b.client.Stat(dir)
	if err != nil || !info.IsDir() {
		return notFoundDirectory()
	}

	entries, err := b.client.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		p := path.Join(dir, e.Name())
		if e.IsDir() {
			err = b.client.RemoveAll(p)
		} else {
			err = b.client.Remove(p)
		}
		if err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	if err := b.client.RemoveDirectory(dir); err != nil {
		return fmt.Errorf("remove dir %s: %w", dir, err)
	}
	return nil
}

func (b *SFTPBackend) List(_ context.Context) ([]Namespace, error) {
	dirs, err := b.client.ReadDir(b.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Namespace{}, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", b.root, err)
	}

	out := make([]Namespace, 0, len(dirs))
	for _, d := range dirs {
		if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		entries, err := b.client.ReadDir(path.Join(b.root, d.Name()))
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", d.Name(), err)
		}
		files := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Mode().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
				files = append(files, e.Name())
			}
		}
		out = append(out, Namespace{Purpose: d.Name(), Files: files})
	}
	return out, nil
}

func (b *SFTPBackend) Close() error {
	err := b.client.Close()
	if sshErr := b.ssh.Close(); err == nil {
		err = sshErr
	}
	return err
}

// mkdirAllSFTP mimics os.MkdirAll for an SFTP server by creating each segment of the path.
func mkdirAllSFTP(client *sftp.Client, dir string) error {
	if dir == "" || dir == "." || dir == "/" {
		return nil
	}

	parts := strings.Split(dir, "/")
	cur := ""
	if strings.HasPrefix(dir, "/") {
		cur = "/"
	}

	for _, p := range parts {
		if p == "" {
			continue
		}
		cur = path.Join(cur, p)
		if _, err := client.Stat(cur); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if err := client.Mkdir(cur); err != nil {
					return fmt.Errorf("mkdir %s: %w", cur, err)
				}
			} else {
				return fmt.Errorf("stat %s: %w", cur, err)
			}
		}
	}
	return nil
}
