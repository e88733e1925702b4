//go:build windows

// Copyright 2026 Blink Labs Software
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
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

// insecureTrustees maps SDDL SID abbreviations and full SID strings of
// groups that must not have access to a signing key
var insecureTrustees = map[string]string{
	"WD":           "Everyone",
	"S-1-1-0":      "Everyone",
	"BU":           "BUILTIN\\Users",
	"S-1-5-32-545": "BUILTIN\\Users",
	"AU":           "Authenticated Users",
	"S-1-5-11":     "Authenticated Users",
}

// checkOpenFilePermissions reads the DACL of an open signing key. NTFS does
// not allow replacing a file that is held open, so checking by name is safe.
func checkOpenFilePermissions(f *os.File) error {
	if strings.EqualFold(os.Getenv(EnvAllowInsecureKeyPerms), "true") {
		slog.Warn(
			"signing key ACL check bypassed",
			"path", f.Name(),
			"env_var", EnvAllowInsecureKeyPerms,
		)
		return nil
	}
	// The descriptor is not freed: that needs unsafe.Pointer, and keys are
	// only loaded a handful of times per process
	sd, err := windows.GetNamedSecurityInfo(
		f.Name(),
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION,
	)
	if err != nil {
		return fmt.Errorf("failed to get security info for %q: %w", f.Name(), err)
	}
	sddl := sd.String()
	if sddl == "" {
		return fmt.Errorf("failed to read security descriptor for %q", f.Name())
	}
	return checkSDDL(f.Name(), sddl)
}

// checkSDDL rejects a DACL that is missing or that allows access to one of
// the insecure trustees
func checkSDDL(path, sddl string) error {
	daclIdx := strings.Index(sddl, "D:")
	if daclIdx < 0 {
		return fmt.Errorf(
			"signing key %q has no DACL: %w",
			path,
			ErrInsecureFileMode,
		)
	}
	dacl := sddl[daclIdx+2:]
	if idx := strings.Index(dacl, "S:"); idx >= 0 {
		dacl = dacl[:idx]
	}
	for _, part := range strings.Split(dacl, "(")[1:] {
		ace, _, ok := strings.Cut(part, ")")
		if !ok {
			break
		}
		// type;flags;rights;object;inherit;trustee
		fields := strings.Split(ace, ";")
		if len(fields) < 6 || fields[0] != "A" {
			continue
		}
		if name, ok := insecureTrustees[fields[5]]; ok {
			return fmt.Errorf(
				"signing key %q grants access to %s: %w",
				path,
				name,
				ErrInsecureFileMode,
			)
		}
	}
	return nil
}
