package service

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }

func stringPtr(s string) *string { return &s }
