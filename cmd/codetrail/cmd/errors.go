package cmd

import "fmt"

// diagnoseDBLock returns actionable guidance when the index database could
// not be opened because another process holds its lock.
func diagnoseDBLock(dbPath string) string {
	return fmt.Sprintf("database %s is locked by another process\n"+
		"  → a 'codetrail watch' started with socket = false may hold it; stop it first\n"+
		"  → find the process:  ps aux | grep 'codetrail'\n"+
		"  → then retry your command", dbPath)
}
