package config

import (
	"sync"
)

var (
	loadedPrompts   AllLoadedPrompts
	loadedPromptsMu sync.RWMutex
)

// LoadedPrompts holds the content of prompts read from files for one
// operation. Empty fields mean "no file configured".
type LoadedPrompts struct {
	System string
	User   string
}

// AllLoadedPrompts holds all loaded prompts for all operations
type AllLoadedPrompts struct {
	Rerank    LoadedPrompts
	DeepParse LoadedPrompts
}

// GetPromptsForOperation returns a copy of the loaded prompts for an operation type
func GetPromptsForOperation(operationType string) LoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()

	switch operationType {
	case OperationRerank:
		return loadedPrompts.Rerank
	case OperationDeepParse:
		return loadedPrompts.DeepParse
	default:
		return LoadedPrompts{}
	}
}

func storeLoadedPrompts(p AllLoadedPrompts) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts = p
}
