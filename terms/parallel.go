package terms

import "sync"

// PartitionMap splits a cell range into ParallelDegree contiguous buckets
// with a maximum imbalance of one cell.
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	var (
		Npart            = pm.MaxIndex / pm.ParallelDegree
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

// ParallelCells runs work over [0,nCell) split across nWorkers goroutines.
// Cells are independent in every term evaluator, so callers may hand each
// worker a Window of the output and geometry Fields plus its own scratch;
// Fields must not be shared between workers for anything else. The first
// error reported by any worker wins; all workers run to completion.
func ParallelCells(nCell, nWorkers int, work func(lo, hi int) error) error {
	if nWorkers < 1 || nWorkers > nCell {
		nWorkers = max(1, min(nWorkers, nCell))
	}
	if nWorkers == 1 {
		return work(0, nCell)
	}
	var (
		pm   = NewPartitionMap(nWorkers, nCell)
		errs = make([]error, nWorkers)
		wg   = sync.WaitGroup{}
	)
	for np := 0; np < nWorkers; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			lo, hi := pm.GetBucketRange(np)
			errs[np] = work(lo, hi)
		}(np)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
