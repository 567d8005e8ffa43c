// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health

import (
	"context"
	"fmt"
)

func ExampleBinary() {
	var readiness Binary

	healthy, _ := readiness.Healthy(context.Background())
	fmt.Println(healthy)

	readiness.MarkHealthy()

	healthy, _ = readiness.Healthy(context.Background())
	fmt.Println(healthy)

	readiness.MarkUnhealthy()

	healthy, _ = readiness.Healthy(context.Background())
	fmt.Println(healthy)

	// Output: false
	// true
	// false
}

func ExampleAnd() {
	var listening Binary
	var seeded Binary

	ready := And(&listening, &seeded)

	healthy, _ := ready.Healthy(context.Background())
	fmt.Println(healthy)

	listening.MarkHealthy()
	seeded.MarkHealthy()

	healthy, _ = ready.Healthy(context.Background())
	fmt.Println(healthy)

	// Output: false
	// true
}
