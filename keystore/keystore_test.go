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
	"crypto/ed25519"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isWindows() bool {
	return runtime.GOOS == "windows"
}

func TestSigningKeyRoundTrip(t *testing.T) {
	if isWindows() {
		t.Setenv(EnvAllowInsecureKeyPerms, "true")
	}
	dir := t.TempDir()
	key, err := GenerateSigningKey("payer")
	require.NoError(t, err)
	skeyPath := filepath.Join(dir, "payer.skey")
	vkeyPath := filepath.Join(dir, "payer.vkey")
	require.NoError(t, SaveSigningKey(skeyPath, key, false))
	require.NoError(t, SaveVerificationKey(vkeyPath, key))

	loaded, err := LoadSigningKey(skeyPath)
	require.NoError(t, err)
	assert.Equal(t, "payer", loaded.Description)
	assert.Equal(t, key.Seed(), loaded.Seed())
	assert.Equal(t, key.Identity(), loaded.Identity())

	id, err := LoadVerificationKey(vkeyPath)
	require.NoError(t, err)
	assert.Equal(t, key.Identity(), id)

	// Signatures made with the loaded key verify against the address
	sig := ed25519.Sign(loaded.PrivateKey(), []byte("msg"))
	assert.True(t, ed25519.Verify(id.Bytes(), []byte("msg"), sig))

	// Existing key files are never overwritten
	require.Error(t, SaveSigningKey(skeyPath, key, false))
}

func TestLoadSigningKeyInsecureMode(t *testing.T) {
	if isWindows() {
		t.Skip("file modes are not used on Windows")
	}
	dir := t.TempDir()
	key, err := NewSigningKey(make([]byte, ed25519.SeedSize), "")
	require.NoError(t, err)
	path := filepath.Join(dir, "key.skey")
	require.NoError(t, SaveSigningKey(path, key, false))
	require.NoError(t, os.Chmod(path, 0o644))
	_, err = LoadSigningKey(path)
	require.ErrorIs(t, err, ErrInsecureFileMode)
}

func TestLoadWrongKeyType(t *testing.T) {
	if isWindows() {
		t.Setenv(EnvAllowInsecureKeyPerms, "true")
	}
	dir := t.TempDir()
	key, err := GenerateSigningKey("")
	require.NoError(t, err)
	vkeyPath := filepath.Join(dir, "key.vkey")
	require.NoError(t, SaveVerificationKey(vkeyPath, key))
	require.NoError(t, os.Chmod(vkeyPath, 0o600))
	_, err = LoadSigningKey(vkeyPath)
	require.ErrorIs(t, err, ErrWrongKeyType)
}

func TestNewSigningKeyBadSeed(t *testing.T) {
	_, err := NewSigningKey([]byte{1, 2, 3}, "")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestEncryptRequiresMasterKeys(t *testing.T) {
	t.Setenv(EnvGcpKmsResourceId, "")
	t.Setenv(EnvAwsKmsKeyArns, "")
	data, err := encodeKeyEnvelope(SigningKeyType, "", make([]byte, 32))
	require.NoError(t, err)
	assert.False(t, isEncrypted(data))
	_, err = Encrypt(data)
	require.ErrorIs(t, err, ErrNoMasterKeys)
	_, err = Encrypt([]byte(`{"data": "x", "sops": {}}`))
	require.ErrorIs(t, err, ErrAlreadyEncrypted)
}
