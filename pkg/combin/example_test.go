package combin_test

import (
	"fmt"

	"github.com/matzehuels/treeseq/pkg/combin"
)

func ExampleCompositions() {
	for _, c := range combin.Compositions(3) {
		fmt.Println(c)
	}
	// Output:
	// [1 1 1]
	// [1 2]
	// [2 1]
	// [3]
}

func ExampleCartesian() {
	fmt.Println(combin.Cartesian([][]int{{1, 2}, {3, 4}}))
	// Output:
	// [[1 3] [1 4] [2 3] [2 4]]
}
