package repository

// SweepForTest runs one expiry sweep.
func SweepForTest(s *MemoryStore) int { return s.sweep() }
