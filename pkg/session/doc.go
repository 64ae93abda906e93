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

// Package session manages the lifecycle of the single browser session owned
// by each capture source.
//
// Start keeps retrying with a fixed interval until a session comes up. By
// default it never gives up, since captures are periodic and a source that
// stays down is preferable to one that is abandoned; MaxStartAttempts bounds
// the loop when an operator wants a failure to surface instead. Shutdown never
// fails: errors and panics while closing are logged.
package session
