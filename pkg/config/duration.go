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

package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// jsonDuration decodes either a duration string ("3s") or integer nanoseconds.
type jsonDuration time.Duration

func (d *jsonDuration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = jsonDuration(parsed)
	case float64:
		*d = jsonDuration(time.Duration(val))
	case nil:
	default:
		return fmt.Errorf("invalid duration %s", string(data))
	}
	return nil
}

func (c *DeliveryConfig) UnmarshalJSON(data []byte) error {
	type plain DeliveryConfig
	aux := struct {
		*plain
		Timeout      jsonDuration `json:"timeout"`
		DrainTimeout jsonDuration `json:"drainTimeout"`
	}{
		plain:        (*plain)(c),
		Timeout:      jsonDuration(c.Timeout),
		DrainTimeout: jsonDuration(c.DrainTimeout),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Timeout = time.Duration(aux.Timeout)
	c.DrainTimeout = time.Duration(aux.DrainTimeout)
	return nil
}

func (c *ProxyConfig) UnmarshalJSON(data []byte) error {
	type plain ProxyConfig
	aux := struct {
		*plain
		UpstreamTimeout jsonDuration `json:"upstreamTimeout"`
	}{
		plain:           (*plain)(c),
		UpstreamTimeout: jsonDuration(c.UpstreamTimeout),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.UpstreamTimeout = time.Duration(aux.UpstreamTimeout)
	return nil
}
