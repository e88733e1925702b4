// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package keystore

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/linkboard/registry"
)

// Valid key files are well under this size
const maxKeyFileSize = 1 << 20

// keyFileEnvelope is the JSON structure of a key file
type keyFileEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CborHex     string `json:"cborHex"`
}

// LoadSigningKey loads a signing key from path. Files encrypted with sops are
// decrypted first. Returns ErrInsecureFileMode if the file has group or
// other access.
//
// The file is opened first and permissions are checked on the open handle
// to avoid a race between the permission check and the read.
func LoadSigningKey(path string) (*SigningKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file %q: %w", path, err)
	}
	defer f.Close()

	if err := checkOpenFilePermissions(f); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(f, maxKeyFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	if isEncrypted(data) {
		data, err = Decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt key file %q: %w", path, err)
		}
	}
	key, err := parseSigningKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key file %q: %w", path, err)
	}
	return key, nil
}

// LoadVerificationKey loads the address stored in a verification key file.
// Verification keys are public, so permissions are not checked.
func LoadVerificationKey(path string) (registry.Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return registry.Identity{}, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	env, keyBytes, err := parseKeyEnvelope(data)
	if err != nil {
		return registry.Identity{}, err
	}
	if env.Type != VerificationKeyType {
		return registry.Identity{}, fmt.Errorf("%w: %s", ErrWrongKeyType, env.Type)
	}
	return registry.IdentityFromBytes(keyBytes)
}

func parseKeyEnvelope(data []byte) (*keyFileEnvelope, []byte, error) {
	var env keyFileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("could not parse key file envelope: %w", err)
	}
	cborData, err := hex.DecodeString(env.CborHex)
	if err != nil {
		return nil, nil, fmt.Errorf("could not decode key from hex: %w", err)
	}
	var keyBytes []byte
	if _, err := cbor.Decode(cborData, &keyBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal key CBOR: %w", err)
	}
	return &env, keyBytes, nil
}

func parseSigningKey(data []byte) (*SigningKey, error) {
	env, keyBytes, err := parseKeyEnvelope(data)
	if err != nil {
		return nil, err
	}
	if env.Type != SigningKeyType {
		return nil, fmt.Errorf("%w: %s", ErrWrongKeyType, env.Type)
	}
	return NewSigningKey(keyBytes, env.Description)
}

func encodeKeyEnvelope(keyType, description string, keyBytes []byte) ([]byte, error) {
	cborData, err := cbor.Encode(keyBytes)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(
		keyFileEnvelope{
			Type:        keyType,
			Description: description,
			CborHex:     hex.EncodeToString(cborData),
		},
		"",
		"    ",
	)
}

// SaveSigningKey writes key to path with owner-only permissions. It refuses
// to overwrite an existing file. With encrypt set the file is encrypted with
// sops using the master keys configured in the environment.
func SaveSigningKey(path string, key *SigningKey, encrypt bool) error {
	data, err := encodeKeyEnvelope(SigningKeyType, key.Description, key.Seed())
	if err != nil {
		return err
	}
	if encrypt {
		data, err = Encrypt(data)
		if err != nil {
			return fmt.Errorf("failed to encrypt key: %w", err)
		}
	}
	return writeNewFile(path, data, 0o600)
}

// SaveVerificationKey writes the public half of key to path
func SaveVerificationKey(path string, key *SigningKey) error {
	data, err := encodeKeyEnvelope(
		VerificationKeyType,
		key.Description,
		key.PublicKey(),
	)
	if err != nil {
		return err
	}
	return writeNewFile(path, data, 0o644)
}

func writeNewFile(path string, data []byte, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("failed to create key file %q: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write key file %q: %w", path, err)
	}
	return f.Close()
}

// isEncrypted reports whether a key file carries sops metadata
func isEncrypted(data []byte) bool {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &doc); err != nil {
		return false
	}
	_, ok := doc["sops"]
	return ok
}
