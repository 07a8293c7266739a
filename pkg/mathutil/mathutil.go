// Package mathutil holds small numeric and string routines with hand-picked
// edge cases, kept free of shared state so every function is a pure target
// for mutation runs.
package mathutil

import (
	"math"
	"strings"

	"github.com/spec-kit/user-scoring-service/pkg/errorutil"
)

// IsPalindrome reports whether input reads the same both ways, ignoring case
// and any character outside [a-z0-9]. The empty string is a palindrome.
func IsPalindrome(input string) bool {
	if input == "" {
		return true
	}
	var clean []rune
	for _, r := range strings.ToLower(input) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			clean = append(clean, r)
		}
	}
	return isPalindrome(clean)
}

func isPalindrome(runes []rune) bool {
	if len(runes) <= 1 {
		return true
	}
	if runes[0] != runes[len(runes)-1] {
		return false
	}
	return isPalindrome(runes[1 : len(runes)-1])
}

// Factorial computes n! recursively.
func Factorial(n int) (int64, error) {
	if n < 0 {
		return 0, errorutil.NewInvalidArgument("Factorial is not defined for negative numbers", nil)
	}
	if n == 0 || n == 1 {
		return 1, nil
	}
	prev, err := Factorial(n - 1)
	if err != nil {
		return 0, err
	}
	return int64(n) * prev, nil
}

// GCD computes the greatest common divisor with the Euclidean algorithm.
// GCD(a, 0) is a.
func GCD(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, errorutil.NewInvalidArgument("GCD is not defined for negative numbers", nil)
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a, nil
}

// IsPrime reports whether number is prime. Numbers below 2 are not.
func IsPrime(number int) bool {
	if number < 2 {
		return false
	}
	if number == 2 {
		return true
	}
	if number%2 == 0 {
		return false
	}
	// odd divisors up to sqrt(number)
	for i := 3; i*i <= number; i += 2 {
		if number%i == 0 {
			return false
		}
	}
	return true
}

// FindMax returns the largest element of values.
func FindMax(values []int) (int, error) {
	if len(values) == 0 {
		return 0, errorutil.NewInvalidArgument("Slice cannot be nil or empty", nil)
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max, nil
}

// CalculateAverage returns the mean of numbers. The sum is accumulated in an
// int64 so large inputs do not overflow before the division.
func CalculateAverage(numbers []int) (float64, error) {
	if len(numbers) == 0 {
		return 0, errorutil.NewInvalidArgument("Slice cannot be nil or empty", nil)
	}
	var sum int64
	for _, n := range numbers {
		sum += int64(n)
	}
	return float64(sum) / float64(len(numbers)), nil
}

// BinarySearch returns the index of target in sorted, or -1 when absent.
func BinarySearch(sorted []int, target int) int {
	left, right := 0, len(sorted)-1
	for left <= right {
		mid := left + (right-left)/2
		switch {
		case sorted[mid] == target:
			return mid
		case sorted[mid] < target:
			left = mid + 1
		default:
			right = mid - 1
		}
	}
	return -1
}

// BubbleSort sorts values in place, bailing out early once a pass makes no
// swaps. Nil and single-element slices are left untouched.
func BubbleSort(values []int) {
	n := len(values)
	if n <= 1 {
		return
	}
	for i := 0; i < n-1; i++ {
		swapped := false
		for j := 0; j < n-i-1; j++ {
			if values[j] > values[j+1] {
				values[j], values[j+1] = values[j+1], values[j]
				swapped = true
			}
		}
		if !swapped {
			break
		}
	}
}

// Fibonacci returns the n-th Fibonacci number, with F(0)=0 and F(1)=F(2)=1.
func Fibonacci(n int) (int64, error) {
	if n < 0 {
		return 0, errorutil.NewInvalidArgument("Fibonacci is not defined for negative numbers", nil)
	}
	if n == 0 {
		return 0, nil
	}
	if n == 1 || n == 2 {
		return 1, nil
	}
	a, err := Fibonacci(n - 1)
	if err != nil {
		return 0, err
	}
	b, err := Fibonacci(n - 2)
	if err != nil {
		return 0, err
	}
	return a + b, nil
}

// IsLeapYear reports whether year is a leap year in the Gregorian calendar.
func IsLeapYear(year int) (bool, error) {
	if year < 1 {
		return false, errorutil.NewInvalidArgument("Year must be positive", nil)
	}
	return (year%4 == 0 && year%100 != 0) || year%400 == 0, nil
}

// CalculateDistance returns the Euclidean distance between two points.
func CalculateDistance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// SieveOfEratosthenes returns all primes up to and including limit, in
// ascending order. Limits below 2 yield nil.
func SieveOfEratosthenes(limit int) []int {
	if limit < 2 {
		return nil
	}
	composite := make([]bool, limit+1)
	for i := 2; i*i <= limit; i++ {
		if !composite[i] {
			for j := i * i; j <= limit; j += i {
				composite[j] = true
			}
		}
	}
	var primes []int
	for i := 2; i <= limit; i++ {
		if !composite[i] {
			primes = append(primes, i)
		}
	}
	return primes
}

// IsValidCreditCard checks a card number with the Luhn algorithm after
// stripping every non-digit. Accepted lengths are 13 to 19 digits.
func IsValidCreditCard(cardNumber string) bool {
	if strings.TrimSpace(cardNumber) == "" {
		return false
	}
	var digits []int
	for _, r := range cardNumber {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	alternate := false
	// right to left, doubling every second digit
	for i := len(digits) - 1; i >= 0; i-- {
		digit := digits[i]
		if alternate {
			digit *= 2
			if digit > 9 {
				digit = digit%10 + 1
			}
		}
		sum += digit
		alternate = !alternate
	}
	return sum%10 == 0
}
