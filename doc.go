// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package kelsi provides password-based authenticated file encryption built
// around the KELSI container format.
//
// A container binds a per-file random salt, an HKDF-SHA256 derived key and a
// deterministic nonce sequence to a chunked AES-256-GCM stream, so that any
// tampering, truncation or version confusion is detected. Each chunk is
// authenticated before its own plaintext is produced.
//
// The cryptographic core lives in crypto/encryption; task planning and
// execution for whole file trees live in tasker; cmd/kelsi exposes both as a
// command line tool.
//
// The project is licensed under the Apache License, Version 2.0. The license
// can be found in the LICENSE file in the root of the project.
package kelsi

// Version is the release version of the kelsi module.
const Version = "0.10.0"
