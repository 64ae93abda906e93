// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package document defines the typed schema of the two documents watchboard
// reads: the local settings file and the dashboards document.
//
// Optional and required keys are modelled as pointer fields so a missing key
// can be told apart from a zero value. Documents are validated once, at the
// boundary where they are decoded; nothing downstream re-validates them.
//
//	var s document.Settings
//	if err := serializer.DecodeFile(path, &s); err != nil {
//	    return err
//	}
//	if err := s.Validate(); err != nil {
//	    return err // VALIDATION
//	}
package document
