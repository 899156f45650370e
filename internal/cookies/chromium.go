package cookies

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// chromiumExtractor reads the Cookies sqlite database of Chromium-family
// browsers. Values are AES-128-CBC encrypted; on Linux the v10 scheme uses a
// fixed password, while v11 values are bound to the desktop keyring and are
// skipped.
type chromiumExtractor struct {
	name  string
	paths []string
}

// Chromium's Linux key derivation: PBKDF2-SHA1("peanuts", "saltysalt", 1 iteration).
var chromiumKey = pbkdf2.Key([]byte("peanuts"), []byte("saltysalt"), 1, 16, sha1.New)

var errKeyringCookie = errors.New("keyring-encrypted cookie (v11) not supported")

// Chromium epoch (1601-01-01) to Unix epoch offset in seconds.
const chromiumEpochOffset = 11644473600

func (c *chromiumExtractor) Browser() string { return c.name }

func (c *chromiumExtractor) Cookies(ctx context.Context, domain string) ([]Cookie, error) {
	dbPath := ""
	for _, p := range c.paths {
		if _, err := os.Stat(p); err == nil {
			dbPath = p
			break
		}
	}
	if dbPath == "" {
		return nil, fmt.Errorf("%s: no cookie database found", c.name)
	}

	db, cleanup, err := openCopy(dbPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	rows, err := db.QueryContext(ctx,
		`SELECT host_key, name, value, encrypted_value, path, expires_utc, is_secure
		 FROM cookies
		 WHERE host_key = ? OR host_key = ? OR host_key LIKE ?`,
		domain, "."+domain, "%."+domain)
	if err != nil {
		return nil, fmt.Errorf("%s: query cookies: %w", c.name, err)
	}
	defer rows.Close()

	now := time.Now().Unix()
	var out []Cookie
	for rows.Next() {
		var (
			ck        Cookie
			plain     string
			encrypted []byte
			expires   int64
			secure    int
		)
		if err := rows.Scan(&ck.Domain, &ck.Name, &plain, &encrypted, &ck.Path, &expires, &secure); err != nil {
			return nil, err
		}
		switch {
		case plain != "":
			ck.Value = plain
		case len(encrypted) > 0:
			v, err := decryptChromiumValue(encrypted, ck.Domain)
			if err != nil {
				continue
			}
			ck.Value = v
		default:
			continue
		}
		if expires > 0 {
			ck.Expires = expires/1_000_000 - chromiumEpochOffset
			if ck.Expires < now {
				continue
			}
		}
		ck.Secure = secure != 0
		out = append(out, ck)
	}
	return out, rows.Err()
}

// decryptChromiumValue decrypts a v10 encrypted cookie value. hostKey is the
// cookie's host_key column; recent Chromium prefixes the plaintext with
// SHA-256(host_key), which gets stripped when present.
func decryptChromiumValue(enc []byte, hostKey string) (string, error) {
	if len(enc) < 3 {
		return "", errors.New("encrypted value too short")
	}
	switch string(enc[:3]) {
	case "v10":
	case "v11":
		return "", errKeyringCookie
	default:
		return "", fmt.Errorf("unknown encryption prefix %q", enc[:3])
	}

	data := enc[3:]
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", errors.New("ciphertext not block-aligned")
	}

	block, err := aes.NewCipher(chromiumKey)
	if err != nil {
		return "", err
	}
	iv := bytes.Repeat([]byte{' '}, aes.BlockSize)
	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, data)

	plain, err = pkcs7Unpad(plain)
	if err != nil {
		return "", err
	}
	if len(plain) >= sha256.Size {
		sum := sha256.Sum256([]byte(hostKey))
		if bytes.Equal(plain[:sha256.Size], sum[:]) {
			plain = plain[sha256.Size:]
		}
	}
	return string(plain), nil
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty plaintext")
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(data) {
		return nil, errors.New("bad padding")
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, errors.New("bad padding")
		}
	}
	return data[:len(data)-pad], nil
}
