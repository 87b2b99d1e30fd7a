// Copyright 2024 qbee.io
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
//
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/utils"
)

// OSReleaseFiles are locations of the os-release file, in order of preference.
var OSReleaseFiles = []string{"/etc/os-release", "/usr/lib/os-release"}

// Host identifies the audited system.
type Host struct {
	// Hostname is the name of the host according to the kernel.
	Hostname string `json:"hostname" yaml:"hostname"`

	// OS is the operating system name from os-release (e.g. "Ubuntu 22.04.3 LTS").
	OS string `json:"os,omitempty" yaml:"os,omitempty"`

	// Kernel is the kernel release (e.g. "5.15.0-52-generic").
	Kernel string `json:"kernel,omitempty" yaml:"kernel,omitempty"`

	// KernelVersion is the kernel build version (e.g. "#58-Ubuntu SMP Thu Oct 13 08:03:55 UTC 2022").
	KernelVersion string `json:"kernelVersion,omitempty" yaml:"kernelVersion,omitempty"`

	// Architecture is the machine hardware name (e.g. "x86_64").
	Architecture string `json:"arch,omitempty" yaml:"arch,omitempty"`
}

// CollectHost returns information about the current host.
// Missing information is logged and left empty.
func CollectHost() Host {
	host := Host{}

	utsname := new(unix.Utsname)
	if err := unix.Uname(utsname); err != nil {
		log.Debugf("error calling Uname syscall: %v", err)
	} else {
		host.Hostname = unix.ByteSliceToString(utsname.Nodename[:])
		host.Kernel = unix.ByteSliceToString(utsname.Release[:])
		host.KernelVersion = unix.ByteSliceToString(utsname.Version[:])
		host.Architecture = unix.ByteSliceToString(utsname.Machine[:])
	}

	if host.Hostname == "" {
		host.Hostname, _ = os.Hostname()
	}

	host.OS = osName(OSReleaseFiles...)

	return host
}

// osName returns operating system name from the first readable os-release file.
func osName(osReleaseFiles ...string) string {
	for _, filePath := range osReleaseFiles {
		data, err := utils.ParseEnvFile(filePath)
		if err != nil {
			log.Debugf("cannot read %s: %v", filePath, err)
			continue
		}

		if name := data["PRETTY_NAME"]; name != "" {
			return name
		}

		if name := data["NAME"]; name != "" {
			return strings.TrimSpace(name + " " + data["VERSION_ID"])
		}
	}

	return ""
}
