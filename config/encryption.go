package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// keyDerivationMessage is signed once per run. Ed25519 and RSA PKCS#1 v1.5
// signatures are deterministic, so the same key always yields the same AES key.
var keyDerivationMessage = []byte("mailcraft-credentials-v1")

var ErrPassphraseRequired = errors.New("SSH key is encrypted - passphrase required")

// SSHCipher encrypts small blobs with AES-256-GCM under a key derived from
// an SSH private key signature.
type SSHCipher struct {
	aesKey []byte
}

func NewSSHCipher(keyPath, passphrase string) (*SSHCipher, error) {
	signer, err := loadSigner(keyPath, passphrase)
	if err != nil {
		return nil, err
	}

	sig, err := signer.Sign(rand.Reader, keyDerivationMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to sign key derivation message: %w", err)
	}

	sum := sha256.Sum256(sig.Blob)
	DebugLog.Debugw("derived credential key", "key_type", signer.PublicKey().Type())
	return &SSHCipher{aesKey: sum[:]}, nil
}

func loadSigner(keyPath, passphrase string) (ssh.Signer, error) {
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err == nil {
		return signer, nil
	}

	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return nil, fmt.Errorf("invalid SSH key: %w", err)
	}
	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}

	signer, err = ssh.ParsePrivateKeyWithPassphrase(keyData, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH key (wrong passphrase?): %w", err)
	}
	return signer, nil
}

// Encrypt returns [nonce][ciphertext+tag].
func (c *SSHCipher) Encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *SSHCipher) Decrypt(data []byte) ([]byte, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	n := gcm.NonceSize()
	if len(data) < n {
		return nil, fmt.Errorf("ciphertext too short")
	}

	plain, err := gcm.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plain, nil
}

func (c *SSHCipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.aesKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// FindSSHKeys returns private keys found under ~/.ssh in preference order.
// ECDSA keys are skipped: their signatures are randomized.
func FindSSHKeys() ([]string, error) {
	sshDir := filepath.Join(GetHomeDir(), ".ssh")
	if _, err := os.Stat(sshDir); os.IsNotExist(err) {
		return nil, nil
	}

	var found []string
	for _, name := range []string{"mailcraft_ed25519", "id_ed25519", "id_rsa"} {
		path := filepath.Join(sshDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		content := string(data)
		if strings.Contains(content, "BEGIN") && strings.Contains(content, "PRIVATE KEY") {
			found = append(found, path)
		}
	}
	return found, nil
}
