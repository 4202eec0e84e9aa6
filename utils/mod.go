package utils

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

func Contains[T comparable](slice []T, item T) bool {
	return FindIndex(slice, item) >= 0
}

// Remove returns slice without the first occurrence of item. The input slice
// is not modified.
func Remove[T comparable](slice []T, item T) []T {
	i := FindIndex(slice, item)
	if i < 0 {
		return slice
	}
	out := make([]T, 0, len(slice)-1)
	out = append(out, slice[:i]...)
	return append(out, slice[i+1:]...)
}
