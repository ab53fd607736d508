package hangman

// builtinPairs is the default round content when no pairs are supplied
// through config. Outputs are intentionally short so they fit in a
// decision prompt.
var builtinPairs = []PromptPair{
	{
		Prompt: "write a haiku about the moon",
		Output: "Silver disc above\nquiet light on sleeping roofs\nthe tide turns again",
	},
	{
		Prompt: "list three primary colors",
		Output: "1. Red\n2. Blue\n3. Yellow",
	},
	{
		Prompt: "explain gravity to a child",
		Output: "Gravity is like an invisible hand that pulls everything down toward the ground. It is why your ball falls when you let it go.",
	},
	{
		Prompt: "write a limerick about a cat",
		Output: "There once was a cat from Peru\nwho dreamt of a mouse in a shoe\nhe woke with a leap\nfrom his afternoon sleep\nand found that the dream had come true",
	},
	{
		Prompt: "describe the ocean in one sentence",
		Output: "The ocean is a vast, restless body of salt water that covers most of our planet and hides worlds we have barely seen.",
	},
	{
		Prompt: "make a short grocery list for pancakes",
		Output: "- Flour\n- Eggs\n- Milk\n- Butter\n- Maple syrup",
	},
	{
		Prompt: "write a two line poem about autumn leaves",
		Output: "Copper and gold drift down without a sound,\nsummer's small receipts returned to ground.",
	},
	{
		Prompt: "give a fun fact about octopuses",
		Output: "An octopus has three hearts, and two of them stop beating when it swims.",
	},
}
