package tromp_test

import (
	"fmt"

	"github.com/matzehuels/tromp/pkg/lambda"
	"github.com/matzehuels/tromp/pkg/tromp"
)

func ExampleRender() {
	d, err := tromp.Render(lambda.K())
	if err != nil {
		panic(err)
	}
	for _, line := range d.Lines('#') {
		fmt.Printf("|%s|\n", line)
	}
	// Output:
	// |###|
	// | # |
	// |###|
	// | # |
	// | # |
	// | # |
}

func ExampleRenderFromDeBruijn() {
	d, err := tromp.RenderFromDeBruijn("λλ1")
	if err != nil {
		panic(err)
	}
	s := d.Stats()
	fmt.Println(s.Width, s.Height, s.MaxDepth)
	// Output: 3 6 2
}

func ExampleRender_freeVariable() {
	_, err := tromp.Render(lambda.L(lambda.V(2)))
	fmt.Println(err)
	// Output: free variable: index 2 at variable 0 exceeds 1 enclosing binders
}
