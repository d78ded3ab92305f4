// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the local Ollama runtime.
//
// The gateway is deliberately narrow: one blocking Generate call that sends
// exactly the raw prompt string and returns the complete response text.
// Prior conversation turns are never included in the request, so the model
// answers each prompt without memory of the session. Health checking and
// model listing exist for diagnostics.
//
// # Key Types
//
//   - Client: the HTTP client (Generate, CheckRunning, ListModels)
//   - ClientConfig: base URL, model, timeouts
//   - GenerateResult: response text plus timing metadata
//   - ClientError: categorized failure (not running, timeout, model not
//     found, invalid response)
//
// # Usage
//
//	client := gateway.NewClientWithConfig(&gateway.ClientConfig{
//		BaseURL: "http://127.0.0.1:11434",
//		Model:   "llama3.2",
//	})
//	result, err := client.Generate(ctx, prompt)
//	if err != nil {
//		fmt.Println(gateway.UserMessage(err))
//		return
//	}
//	fmt.Println(result.Text)
package gateway
