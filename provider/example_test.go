package provider_test

import (
	"fmt"
	"log"

	"mailcraft/provider"
)

// ExampleNewProvider demonstrates creating an Ollama provider using the factory.
func ExampleNewProvider() {
	p, err := provider.NewProvider(provider.Config{
		Type:    provider.ProviderTypeOllama,
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Provider created: %T\n", p)
	// Output: Provider created: *provider.OllamaProvider
}

// ExampleMapProviderIDToType shows how config IDs map to provider types.
func ExampleMapProviderIDToType() {
	for _, id := range []string{"gemini", "openrouter", "ollama"} {
		fmt.Println(id, "→", provider.MapProviderIDToType(id))
	}
	// Output:
	// gemini → gemini
	// openrouter → openrouter
	// ollama → ollama
}
