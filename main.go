// Command workoutbot runs the workout tracking bot and its maintenance tools.
package main

func main() {
	Execute()
}
